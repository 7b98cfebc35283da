// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package v1

import "encoding/json"

const (
	// APIRoute is prefixed onto all routes defined in this package.
	APIRoute = "/api"

	// Request headers.
	HeaderAuthorization = "Authorization"
	HeaderCSRFToken     = "X-CSRF-Token"
	HeaderRequestID     = "X-Request-ID"

	// AuthScheme is the scheme of the Authorization header value. The
	// header carries the session ID, i.e. "Bearer <sessionid>".
	AuthScheme = "Bearer"

	// User routes
	RouteUserLogin  = "/users/login"
	RouteUserLogout = "/users/logout"
	RouteUserMe     = "/users/me"

	// Sponsor routes
	RouteSponsors      = "/sponsors"
	RouteSponsorSelect = "/sponsors/select"

	// Shop (peermall) routes
	RouteShopNew    = "/peermalls"
	RouteShopBySlug = "/peermalls/slug/{slug}"
	RouteShopOwner  = "/peermalls/owner/{uid}"

	// ShopFormImage is the multipart form field that carries the shop
	// image on a ShopNew request.
	ShopFormImage = "image"

	// PolicyMaxImageSize is the maximum shop image size in bytes.
	PolicyMaxImageSize = 2 * 1024 * 1024
)

var (
	// ShopImageMimeTypes contains the image MIME types that are accepted
	// by the ShopNew route.
	ShopImageMimeTypes = map[string]struct{}{
		"image/png":     {},
		"image/jpeg":    {},
		"image/gif":     {},
		"image/webp":    {},
		"image/svg+xml": {},
	}
)

// Reply is the envelope that wraps every API reply. Data is only populated
// on success. Message contains a human readable description of the failure
// and is sometimes populated on success.
type Reply struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// User is a peermall user account.
type User struct {
	UID          string `json:"uid"`
	Email        string `json:"email"`
	Name         string `json:"name,omitempty"`
	Phone        string `json:"phone,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
	CreatedAt    int64  `json:"createdAt"` // Unix timestamp
	UpdatedAt    int64  `json:"updatedAt"` // Unix timestamp
}

// Login is sent to the login route to create a new session.
type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginReply is the reply to the Login command. The session ID and the CSRF
// token are opaque and must be sent on all subsequent authenticated requests.
type LoginReply struct {
	SessionID string `json:"sessionId"`
	CSRFToken string `json:"csrfToken"`
	User      User   `json:"user"`
}

// Logout is sent to the logout route. The session ID is included in the
// body because the caller may have already discarded its local credentials.
type Logout struct {
	SessionID string `json:"sessionId"`
}

// SponsorStatusT represents the status of a sponsor relationship.
type SponsorStatusT string

const (
	SponsorStatusPending  SponsorStatusT = "pending"
	SponsorStatusActive   SponsorStatusT = "active"
	SponsorStatusRejected SponsorStatusT = "rejected"
)

// SponsorRelationship links a user to the sponsor they selected.
type SponsorRelationship struct {
	SponsorID string         `json:"sponsorId"`
	UserUID   string         `json:"userUid"`
	Status    SponsorStatusT `json:"status"`
}

// SponsorLookup retrieves the sponsor relationship of a user. It is sent
// as GET query params.
type SponsorLookup struct {
	UserUID string `schema:"userUid"`
}

// SponsorSelect records the sponsor selected by a user.
type SponsorSelect struct {
	SponsorID string `json:"sponsorId"`
	UserUID   string `json:"userUid"`
}

// ShopStats contains the public counters of a shop.
type ShopStats struct {
	Products  uint64 `json:"products"`
	Events    uint64 `json:"events"`
	Followers uint64 `json:"followers"`
	Reviews   uint64 `json:"reviews"`
}

// Shop is a peermall shop aggregate.
type Shop struct {
	ID          string    `json:"id"`
	URLSlug     string    `json:"urlSlug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	OwnerUID    string    `json:"ownerUid"`
	Stats       ShopStats `json:"stats"`
}

// ShopNew creates a new shop. It is sent as a multipart form together with
// an optional image file part named ShopFormImage.
type ShopNew struct {
	Name        string `schema:"name"`
	URLSlug     string `schema:"urlSlug"`
	Description string `schema:"description"`
	OwnerUID    string `schema:"ownerUid"`
}
