package helper

import (
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"path"
	"slices"
	"strings"

	"github.com/TheCandyMan-apps/footprintiq-sub026/internal/model"
)

// AllowedProviders is the closed set of provider names a scan request may
// ask for. The scan runner registers implementations under these names.
var AllowedProviders = []string{"hibp", "sherlock", "gravatar", "whois", "web_index", "phone_lookup"}

// NormalizeURL decodes, cleans and strips query/fragment from a finding
// URL so equal profiles compare equal.
func NormalizeURL(rawUrl string) (string, error) {
	decoded, _ := url.QueryUnescape(rawUrl)

	parsedUrl, err := url.Parse(decoded)
	if err != nil {
		return "", err
	}

	parsedUrl.Path = path.Clean(parsedUrl.Path)

	if parsedUrl.Path == "." {
		parsedUrl.Path = ""
	}

	parsedUrl.RawQuery = ""
	parsedUrl.Fragment = ""

	parsedUrl.Path = strings.ReplaceAll(parsedUrl.Path, "//", "/")

	return parsedUrl.String(), nil
}

func ValidateScanRequest(req *model.ScanRequest) error {
	if req == nil || req.Value == "" {
		return errors.New("scan value is empty")
	}

	if !isValidIdentifier(req.Type, req.Value) {
		return fmt.Errorf("invalid %s: %s", req.Type, req.Value)
	}

	providers, err := validateProviders(req.Providers)
	if err != nil {
		return err
	}
	req.Providers = providers

	return nil
}

func isValidIdentifier(scanType model.ScanType, value string) bool {
	switch scanType {
	case model.ScanTypeEmail:
		addr, err := mail.ParseAddress(value)
		return err == nil && addr.Address == value
	case model.ScanTypeUsername:
		return isValidUsername(value)
	case model.ScanTypeDomain:
		return isValidDomain(value)
	case model.ScanTypePhone:
		return isValidPhone(value)
	}
	return false
}

func isValidUsername(value string) bool {
	if len(value) < 2 || len(value) > 64 {
		return false
	}
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '.' || r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}

func isValidDomain(value string) bool {
	if strings.Contains(value, "://") || strings.ContainsAny(value, " /") {
		return false
	}
	u, err := url.Parse("https://" + value)
	if err != nil {
		return false
	}
	return u.Host == value && strings.Contains(value, ".")
}

func isValidPhone(value string) bool {
	digits := value
	if strings.HasPrefix(digits, "+") {
		digits = digits[1:]
	}
	if len(digits) < 7 || len(digits) > 15 {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func validateProviders(providers []string) ([]string, error) {
	if len(providers) == 0 {
		return []string{}, nil
	}

	seen := make(map[string]struct{})
	var normalized []string

	for _, provider := range providers {
		provider = strings.ToLower(strings.TrimSpace(provider))

		if !slices.Contains(AllowedProviders, provider) {
			return nil, fmt.Errorf("unsupported provider: %s", provider)
		}

		if _, exists := seen[provider]; !exists {
			seen[provider] = struct{}{}
			normalized = append(normalized, provider)
		}
	}

	return normalized, nil
}
