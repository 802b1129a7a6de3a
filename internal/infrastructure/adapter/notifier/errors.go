package notifier

import (
	"errors"
	"net/url"
)

// unwrapURLError drops the request URL from transport errors
func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
