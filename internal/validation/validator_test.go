// Triprec - Trip Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/triprec

package validation

import (
	"strings"
	"testing"
)

type sampleRequest struct {
	TripID string   `json:"trip_id" validate:"required,max=8"`
	K      *int     `json:"n_recommendations,omitempty" validate:"omitempty,min=1,max=10"`
	Shift  string   `json:"shift_waktu" validate:"omitempty,oneof=Pagi Siang Sore"`
	Weight *float64 `json:"weight" validate:"omitempty,gte=0"`
}

func intPtr(v int) *int { return &v }

func TestValidateStruct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		req       sampleRequest
		wantField string
		wantMsg   string
	}{
		{"valid", sampleRequest{TripID: "V.01", K: intPtr(3), Shift: "Sore"}, "", ""},
		{"missing id", sampleRequest{}, "trip_id", "trip_id is required"},
		{"long id", sampleRequest{TripID: "123456789"}, "trip_id", "trip_id must be at most 8 characters"},
		{"k too small", sampleRequest{TripID: "V", K: intPtr(0)}, "n_recommendations", "n_recommendations must be at least 1"},
		{"k too big", sampleRequest{TripID: "V", K: intPtr(11)}, "n_recommendations", "n_recommendations must be at most 10"},
		{"bad shift", sampleRequest{TripID: "V", Shift: "Malam"}, "shift_waktu", "shift_waktu must be one of: Pagi Siang Sore"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			verr := ValidateStruct(&tt.req)
			if tt.wantField == "" {
				if verr != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", verr)
				}
				return
			}
			if verr == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			errs := verr.Errors()
			if len(errs) != 1 {
				t.Fatalf("len(Errors()) = %d, want 1", len(errs))
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", errs[0].Error(), tt.wantMsg)
			}
		})
	}
}

func TestToAPIError(t *testing.T) {
	t.Parallel()

	single := ValidateStruct(&sampleRequest{})
	apiErr := single.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Details["field"] != "trip_id" {
		t.Errorf("Details[field] = %v, want trip_id", apiErr.Details["field"])
	}

	multi := ValidateStruct(&sampleRequest{K: intPtr(0), Shift: "Malam"})
	apiErr = multi.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 3 {
		t.Fatalf("Details[fields] = %v, want 3 entries", apiErr.Details["fields"])
	}
	if !strings.Contains(apiErr.Message, "trip_id is required") {
		t.Errorf("Message = %q", apiErr.Message)
	}

	empty := (&RequestValidationError{}).ToAPIError()
	if empty.Message != "Validation failed" {
		t.Errorf("empty Message = %q", empty.Message)
	}
}
