package insight

import (
	"strings"
)

// Connection string keys. Keys are matched case-insensitively; the parsed
// map always carries them lower-cased.
const (
	KeyInstrumentationKey = "instrumentationkey"
	KeyIngestionEndpoint  = "ingestionendpoint"
	KeyEndpointSuffix     = "endpointsuffix"
	KeyLocation           = "location"
	KeyAuthorization      = "authorization"
)

// ParseConnectionString parses a telemetry connection string of the form
//
//	key1=value1;key2=value2;...
//
// into a map with lower-cased keys. An empty input is treated as absent and
// yields an empty map. Duplicate keys resolve last-write-wins.
//
// When the string carries no explicit IngestionEndpoint, one is derived from
// EndpointSuffix (and an optional Location prefix) as
// https://{location.}dc.{endpointsuffix}; with no suffix either, the
// ingestion endpoint entry is simply absent from the result.
func ParseConnectionString(raw string) (map[string]string, error) {
	result := make(map[string]string)
	if raw == "" {
		return result, nil
	}

	for _, pair := range strings.Split(raw, ";") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 || kv[0] == "" {
			return nil, NewError("connectionstring.parse", "invalid connection string", ErrInvalidConnectionString).
				WithContext("pair", pair)
		}
		result[strings.ToLower(kv[0])] = kv[1]
	}

	// The only supported authorization mechanism is the instrumentation key.
	if auth, ok := result[KeyAuthorization]; ok && !strings.EqualFold(auth, "ikey") {
		return nil, NewError("connectionstring.parse", "invalid authorization mechanism", ErrInvalidAuthorization).
			WithContext("authorization", auth)
	}

	if _, ok := result[KeyIngestionEndpoint]; !ok {
		if suffix, ok := result[KeyEndpointSuffix]; ok {
			locationPrefix := ""
			if location, ok := result[KeyLocation]; ok {
				locationPrefix = location + "."
			}
			result[KeyIngestionEndpoint] = "https://" + locationPrefix + "dc." + suffix
		}
	}

	return result, nil
}
