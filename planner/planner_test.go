package planner

import (
	"context"
	"reflect"
	"testing"
)

func TestSampleGeneratorShape(t *testing.T) {
	res, err := SampleGenerator{}.GenerateItinerary(context.Background(), GenerateRequest{
		Location:  "Lisbon",
		TotalDays: 4,
	})
	if err != nil {
		t.Fatalf("GenerateItinerary: %v", err)
	}
	if len(res.Days) != 4 {
		t.Fatalf("expected 4 days, got %d", len(res.Days))
	}
	for i, day := range res.Days {
		if day.Day != i+1 {
			t.Errorf("day %d numbered %d", i, day.Day)
		}
		if len(day.Activities) == 0 {
			t.Errorf("day %d has no activities", day.Day)
		}
		for j, act := range day.Activities {
			if act.Order != j {
				t.Errorf("day %d activity %d has order %d", day.Day, j, act.Order)
			}
			if act.Name == "" {
				t.Errorf("day %d activity %d has empty name", day.Day, j)
			}
			if act.RecommendDuration < 60 || act.RecommendDuration > 150 {
				t.Errorf("day %d activity %d duration %d out of range", day.Day, j, act.RecommendDuration)
			}
		}
	}
}

func TestSampleGeneratorDeterministic(t *testing.T) {
	req := GenerateRequest{Location: "Kyoto", TotalDays: 2}
	a, err := SampleGenerator{}.GenerateItinerary(context.Background(), req)
	if err != nil {
		t.Fatalf("first generate: %v", err)
	}
	b, err := SampleGenerator{}.GenerateItinerary(context.Background(), req)
	if err != nil {
		t.Fatalf("second generate: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("same request produced different plans")
	}
}

func TestSampleGeneratorRejectsZeroDays(t *testing.T) {
	if _, err := (SampleGenerator{}).GenerateItinerary(context.Background(), GenerateRequest{Location: "Oslo"}); err == nil {
		t.Error("expected error for zero-day request")
	}
}

func TestSampleResolverStable(t *testing.T) {
	a, err := SampleResolver{}.ResolvePlace(context.Background(), "Harbour Sunset Point")
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	b, err := SampleResolver{}.ResolvePlace(context.Background(), "Harbour Sunset Point")
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if a.Latitude != b.Latitude || a.Longitude != b.Longitude {
		t.Error("same query resolved to different coordinates")
	}
	if a.Latitude < -90 || a.Latitude > 90 {
		t.Errorf("latitude %v out of range", a.Latitude)
	}
	if a.Longitude < -180 || a.Longitude > 180 {
		t.Errorf("longitude %v out of range", a.Longitude)
	}
	if len(a.PhotoURLs) == 0 {
		t.Error("expected at least one photo URL")
	}
}

func TestSampleResolverEmptyQuery(t *testing.T) {
	if _, err := (SampleResolver{}).ResolvePlace(context.Background(), ""); err == nil {
		t.Error("expected error for empty query")
	}
}
