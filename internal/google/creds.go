// Package google resolves client options shared by the Drive and Sheets
// gateways. The whole system runs on one service-account credential, supplied
// either as inline JSON or as a path to a key file.
package google

import (
	"strings"

	"google.golang.org/api/option"
)

// ClientOptions builds API client options from a credential value: inline
// service-account JSON when the value starts with "{", otherwise a file path.
// An empty value returns nil so ambient application-default credentials apply.
func ClientOptions(credentials string) []option.ClientOption {
	credentials = strings.TrimSpace(credentials)
	if credentials == "" {
		return nil
	}
	if strings.HasPrefix(credentials, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(credentials))}
	}
	return []option.ClientOption{option.WithCredentialsFile(credentials)}
}
