package mendeley

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/imroc/req/v3"
	"github.com/openmined/papersync/internal/docsync"
)

var (
	ErrNoTokenSource  = errors.New("mendeley: token source missing")
	ErrFolderNotFound = errors.New("mendeley: folder not found")
	ErrInvalidName    = errors.New("mendeley: file name has no document id")
)

// APIError is the error body returned by the Mendeley API
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: %d - %s", e.StatusCode, e.Message)
}

// handleAPIError maps transport and API errors onto the docsync taxonomy
func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	// an undecodable error body surfaces as requestErr, the status still counts
	gotResponse := resp != nil && resp.Response != nil
	if requestErr != nil && !(gotResponse && resp.IsErrorState()) {
		return fmt.Errorf("mendeley: %s: %w", operation, requestErr)
	}

	if !resp.IsErrorState() {
		return nil
	}

	apiErr, ok := resp.ErrorResult().(*APIError)
	if !ok || apiErr == nil {
		apiErr = &APIError{Message: resp.String()}
	}
	apiErr.StatusCode = resp.GetStatusCode()

	switch apiErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("mendeley: %s: %w: %w", operation, docsync.ErrAuth, apiErr)
	case http.StatusNotFound:
		return fmt.Errorf("mendeley: %s: %w: %w", operation, docsync.ErrNotFound, apiErr)
	default:
		return fmt.Errorf("mendeley: %s: %w", operation, apiErr)
	}
}
