package insight

import (
	"testing"
)

func TestParseConnectionString(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		want     map[string]string
		wantErr  bool
		wantCode ErrorCode
	}{
		{
			name: "empty input is absent, not an error",
			raw:  "",
			want: map[string]string{},
		},
		{
			name: "key and authorization",
			raw:  "InstrumentationKey=abc;Authorization=ikey",
			want: map[string]string{
				"instrumentationkey": "abc",
				"authorization":      "ikey",
			},
		},
		{
			name: "authorization is case-insensitive",
			raw:  "Authorization=IKEY",
			want: map[string]string{
				"authorization": "IKEY",
			},
		},
		{
			name:     "unsupported authorization mechanism",
			raw:      "Authorization=badvalue",
			wantErr:  true,
			wantCode: ErrInvalidAuthorization,
		},
		{
			name: "explicit ingestion endpoint wins over suffix",
			raw:  "IngestionEndpoint=https://custom.example.com;EndpointSuffix=ignored.com",
			want: map[string]string{
				"ingestionendpoint": "https://custom.example.com",
				"endpointsuffix":    "ignored.com",
			},
		},
		{
			name: "endpoint derived from suffix and location",
			raw:  "EndpointSuffix=example.com;Location=westus",
			want: map[string]string{
				"endpointsuffix":    "example.com",
				"location":          "westus",
				"ingestionendpoint": "https://westus.dc.example.com",
			},
		},
		{
			name: "endpoint derived from suffix without location",
			raw:  "EndpointSuffix=example.com",
			want: map[string]string{
				"endpointsuffix":    "example.com",
				"ingestionendpoint": "https://dc.example.com",
			},
		},
		{
			name: "value may contain equals signs",
			raw:  "InstrumentationKey=abc=def",
			want: map[string]string{
				"instrumentationkey": "abc=def",
			},
		},
		{
			name: "duplicate keys resolve last-write-wins",
			raw:  "InstrumentationKey=first;instrumentationkey=second",
			want: map[string]string{
				"instrumentationkey": "second",
			},
		},
		{
			name:     "pair without equals sign",
			raw:      "InstrumentationKey=abc;garbage",
			wantErr:  true,
			wantCode: ErrInvalidConnectionString,
		},
		{
			name:     "trailing separator",
			raw:      "InstrumentationKey=abc;",
			wantErr:  true,
			wantCode: ErrInvalidConnectionString,
		},
		{
			name:     "empty key",
			raw:      "=value",
			wantErr:  true,
			wantCode: ErrInvalidConnectionString,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseConnectionString(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("ParseConnectionString() expected error, got nil")
				}
				if !IsCode(err, tt.wantCode) {
					t.Errorf("error code = %v, want %v", GetCode(err), tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseConnectionString() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Errorf("got %d entries, want %d: %v", len(got), len(tt.want), got)
			}
			for k, want := range tt.want {
				if got[k] != want {
					t.Errorf("result[%q] = %q, want %q", k, got[k], want)
				}
			}
		})
	}
}

func TestParseConnectionStringNoEndpointMarker(t *testing.T) {
	// Without an explicit endpoint or a suffix, the ingestion endpoint
	// entry must simply be absent.
	got, err := ParseConnectionString("InstrumentationKey=abc;Authorization=ikey")
	if err != nil {
		t.Fatalf("ParseConnectionString() error = %v", err)
	}
	if _, ok := got[KeyIngestionEndpoint]; ok {
		t.Errorf("ingestionendpoint should be absent, got %q", got[KeyIngestionEndpoint])
	}
}
