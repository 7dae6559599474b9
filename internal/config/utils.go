package config

import (
	"fmt"
	"net/url"
	"strings"
)

func validateURL(urlStr, fieldName string) error {
	if urlStr == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", fieldName, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s must have http or https scheme", fieldName)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("%s must include a host", fieldName)
	}

	return nil
}

func validatePath(path, fieldName string) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("%s must be an absolute path, got %q", fieldName, path)
	}

	return nil
}
