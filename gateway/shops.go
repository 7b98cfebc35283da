// Copyright (c) 2026 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	v1 "github.com/decred/peermall/api/v1"
	"github.com/decred/peermall/util"
	"github.com/gorilla/schema"
	"github.com/pkg/errors"
)

// Image is an image file that is uploaded with a shop.
type Image struct {
	Filename string
	Data     []byte
}

// shopReq sends a GET request for a single shop.
func (c *Client) shopReq(ctx context.Context, route string) (*v1.Shop, error) {
	data, err := c.makeReq(ctx, http.MethodGet, route, nil)
	if err != nil {
		return nil, err
	}
	if isEmpty(data) {
		// Treat an empty reply the same as a 404 so that callers
		// only need to handle one not found case.
		return nil, RespErr{
			Kind:     ErrorKindNotFound,
			HTTPCode: http.StatusOK,
		}
	}

	var s v1.Shop
	err = json.Unmarshal(data, &s)
	if err != nil {
		return nil, errors.Wrap(err, "unmarshal Shop")
	}

	return &s, nil
}

// ShopBySlug returns the shop with the provided url slug. A RespErr of kind
// ErrorKindNotFound is returned if the shop does not exist.
func (c *Client) ShopBySlug(ctx context.Context, slug string) (*v1.Shop, error) {
	route := routeWithVars(v1.RouteShopBySlug, map[string]string{
		"slug": slug,
	})
	return c.shopReq(ctx, route)
}

// ShopByOwner returns the shop that is owned by the user. A RespErr of kind
// ErrorKindNotFound is returned if the user does not own a shop.
func (c *Client) ShopByOwner(ctx context.Context, uid string) (*v1.Shop, error) {
	route := routeWithVars(v1.RouteShopOwner, map[string]string{
		"uid": uid,
	})
	return c.shopReq(ctx, route)
}

// ShopNew creates a new shop. The url slug is derived from the shop name
// when it is not provided. The image is optional.
func (c *Client) ShopNew(ctx context.Context, sn v1.ShopNew, img *Image) (*v1.Shop, error) {
	if sn.URLSlug == "" {
		sn.URLSlug = util.Slug(sn.Name)
	}
	if sn.URLSlug == "" {
		return nil, errors.Errorf("cannot derive url slug from name '%v'",
			sn.Name)
	}

	// Setup the multipart form
	form := url.Values{}
	err := schema.NewEncoder().Encode(sn, form)
	if err != nil {
		return nil, errors.Wrap(err, "encode form")
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vs := range form {
		for _, v := range vs {
			err = mw.WriteField(k, v)
			if err != nil {
				return nil, err
			}
		}
	}
	if img != nil {
		err = writeImage(mw, *img)
		if err != nil {
			return nil, err
		}
	}
	err = mw.Close()
	if err != nil {
		return nil, err
	}

	data, err := c.do(ctx, &request{
		method:      http.MethodPost,
		route:       v1.RouteShopNew,
		raw:         buf.Bytes(),
		contentType: mw.FormDataContentType(),
	})
	if err != nil {
		return nil, err
	}

	var s v1.Shop
	err = json.Unmarshal(data, &s)
	if err != nil {
		return nil, errors.Wrap(err, "unmarshal Shop")
	}

	return &s, nil
}

// writeImage validates the image and writes it to the multipart form.
func writeImage(mw *multipart.Writer, img Image) error {
	if len(img.Data) > v1.PolicyMaxImageSize {
		return errors.Wrapf(ErrImageTooLarge, "%v bytes", len(img.Data))
	}
	mimeType := util.DetectMimeType(img.Data)
	if _, ok := v1.ShopImageMimeTypes[mimeType]; !ok {
		return errors.Wrapf(ErrUnsupportedImage, "%v", mimeType)
	}
	filename := util.SanitizeFilename(img.Filename)
	if filename == "" {
		filename = "image"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		v1.ShopFormImage, filename))
	h.Set("Content-Type", mimeType)
	w, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	_, err = w.Write(img.Data)
	return err
}
