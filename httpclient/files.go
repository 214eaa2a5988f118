package httpclient

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"os"
	"path/filepath"
)

// uploadFieldName is the multipart form field used for file uploads.
const uploadFieldName = "file"

// DownloadFile performs a GET against rawURL and streams the body into
// destPath. The destination handle is closed on every exit path. A
// mid-stream transport failure leaves the partially written file in place
// and surfaces the error, so callers can inspect partial downloads.
func (c *client) DownloadFile(ctx context.Context, rawURL, destPath string) error {
	fullURL, err := c.resolveURL(rawURL, nil)
	if err != nil {
		return err
	}

	httpReq, err := c.buildRequest(ctx, nethttp.MethodGet, fullURL, &Request{URL: rawURL}, nil)
	if err != nil {
		return err
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return c.wrapTransportError(err)
	}
	defer httpResp.Body.Close()

	if !IsSuccessStatus(httpResp.StatusCode) {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
		return NewHTTPError("download failed", httpResp.StatusCode, body)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return NewInvalidRequestError("cannot create destination file: "+err.Error(), "dest")
	}
	defer out.Close()

	written, err := io.Copy(out, httpResp.Body)
	if err != nil {
		// Partial output stays on disk.
		return NewNetworkError("download interrupted", err)
	}

	if c.logger != nil {
		c.logger.WithContext(ctx).Debug().
			Str("url", fullURL).
			Str("dest", destPath).
			Int64("bytes", written).
			Msg("file downloaded")
	}
	return nil
}

// UploadFile performs a POST against rawURL with the contents of srcPath
// as a multipart form file. A missing source fails with a FileNotFound
// error before any network call.
func (c *client) UploadFile(ctx context.Context, rawURL, srcPath string) (*Response, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, NewFileNotFoundError(srcPath, err)
		}
		return nil, NewInvalidRequestError("cannot open source file: "+err.Error(), "src")
	}
	defer src.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(uploadFieldName, filepath.Base(srcPath))
	if err != nil {
		return nil, NewInvalidRequestError("cannot build multipart form: "+err.Error(), "src")
	}
	if _, err := io.Copy(part, src); err != nil {
		return nil, NewInvalidRequestError("cannot read source file: "+err.Error(), "src")
	}
	if err := writer.Close(); err != nil {
		return nil, NewInvalidRequestError("cannot finalize multipart form: "+err.Error(), "src")
	}

	return c.Do(ctx, nethttp.MethodPost, &Request{
		URL:     rawURL,
		RawBody: buf.Bytes(),
		Headers: map[string]string{"Content-Type": writer.FormDataContentType()},
	})
}
