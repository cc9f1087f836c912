package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MaxImportURLs bounds one import batch.
const MaxImportURLs = 50

// ImportRequest is the body of the bulk import trigger.
type ImportRequest struct {
	URLs     []string `json:"urls" validate:"required,min=1,max=50,dive,required,http_url"`
	Provider string   `json:"provider,omitempty" validate:"omitempty,oneof=temu alibaba"`
}

var v = validator.New(validator.WithRequiredStructEnabled())

// Import trims the request in place and validates it. Every element must be
// an http(s) URL; blank elements are rejected, not skipped. The returned error is
// safe to show to the caller.
func Import(req *ImportRequest) error {
	for i, u := range req.URLs {
		req.URLs[i] = strings.TrimSpace(u)
	}
	req.Provider = strings.ToLower(strings.TrimSpace(req.Provider))

	err := v.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return errors.New("ugyldig forespørsel")
	}
	fe := verrs[0]
	switch {
	case fe.StructField() == "Provider":
		return fmt.Errorf("ukjent leverandør %q (støttet: temu, alibaba)", req.Provider)
	case fe.Tag() == "required" && fe.StructField() != "URLs":
		return errors.New("ugyldig URL: tom verdi (må starte med http:// eller https://)")
	case fe.Tag() == "http_url":
		return fmt.Errorf("ugyldig URL: %v (må starte med http:// eller https://)", fe.Value())
	case fe.Tag() == "max":
		return fmt.Errorf("for mange URL-er (maks %d)", MaxImportURLs)
	}
	return errors.New("urls må være en ikke-tom liste")
}

// SplitURLs reads newline- or whitespace-separated URLs from a form field.
func SplitURLs(s string) []string {
	return strings.Fields(s)
}
