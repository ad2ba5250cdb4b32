package cdn

import (
	"context"
	"testing"

	"github.com/Shri19-web/staticwebsite/integration/mock"
)

func TestShouldInvalidate(t *testing.T) {
	testCases := []struct {
		name           string
		enabled        bool
		distributionID string
		want           bool
	}{
		{"enabled with id", true, "E2ABCDEF123456", true},
		{"enabled without id", true, "", false},
		{"disabled with id", false, "E2ABCDEF123456", false},
		{"disabled without id", false, "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShouldInvalidate(tc.enabled, tc.distributionID); got != tc.want {
				t.Errorf("ShouldInvalidate(%v, %q) = %v, want %v",
					tc.enabled, tc.distributionID, got, tc.want)
			}
		})
	}
}

func TestInvalidateAll(t *testing.T) {
	client := mock.NewCloudFrontClient()
	inv := NewInvalidator(client)

	id, err := inv.InvalidateAll(context.Background(), "E2ABCDEF123456")
	if err != nil {
		t.Fatalf("failed to invalidate: %v", err)
	}
	if id == "" {
		t.Error("expected non-empty invalidation id")
	}

	if len(client.Invalidations) != 1 {
		t.Fatalf("expected 1 invalidation, got %d", len(client.Invalidations))
	}
	got := client.Invalidations[0]
	if got.DistributionID != "E2ABCDEF123456" {
		t.Errorf("distribution mismatch: %s", got.DistributionID)
	}
	if len(got.Paths) != 1 || got.Paths[0] != "/*" {
		t.Errorf("expected wildcard path, got %v", got.Paths)
	}
	if got.CallerReference == "" {
		t.Error("expected non-empty caller reference")
	}
}

func TestInvalidateAllUniqueCallerReferences(t *testing.T) {
	client := mock.NewCloudFrontClient()
	inv := NewInvalidator(client)
	ctx := context.Background()

	if _, err := inv.InvalidateAll(ctx, "E2ABCDEF123456"); err != nil {
		t.Fatal(err)
	}
	if _, err := inv.InvalidateAll(ctx, "E2ABCDEF123456"); err != nil {
		t.Fatal(err)
	}

	if client.Invalidations[0].CallerReference == client.Invalidations[1].CallerReference {
		t.Error("expected distinct caller references for repeated invalidations")
	}
}
