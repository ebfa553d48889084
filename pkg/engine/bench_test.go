package engine

import (
	"context"
	"fmt"
	"testing"

	"github.com/getmockd/httpmock/pkg/config"
	"github.com/getmockd/httpmock/pkg/mock"
)

// benchEngine registers n reusable entries on distinct URLs.
func benchEngine(b *testing.B, n int) *Engine {
	b.Helper()
	e, err := New(config.DefaultOptions())
	if err != nil {
		b.Fatal(err)
	}
	for i := range n {
		_, err := e.AddResponse(text("ok"), mock.MatchURL(fmt.Sprintf("https://api.example.org/items/%d", i)), mock.Reusable())
		if err != nil {
			b.Fatal(err)
		}
	}
	return e
}

func BenchmarkEngine_Handle(b *testing.B) {
	for _, n := range []int{1, 10, 100} {
		b.Run(fmt.Sprintf("entries_%d", n), func(b *testing.B) {
			e := benchEngine(b, n)
			req, err := mock.NewRequest("GET", fmt.Sprintf("https://api.example.org/items/%d", n-1), nil)
			if err != nil {
				b.Fatal(err)
			}
			ctx := context.Background()

			b.ReportAllocs()
			for b.Loop() {
				if out := e.Handle(ctx, req); out.Err != nil {
					b.Fatal(out.Err)
				}
			}
		})
	}
}

func BenchmarkEngine_HandleParallel(b *testing.B) {
	e := benchEngine(b, 10)
	req, err := mock.NewRequest("GET", "https://api.example.org/items/5", nil)
	if err != nil {
		b.Fatal(err)
	}
	ctx := context.Background()

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if out := e.Handle(ctx, req); out.Err != nil {
				b.Error(out.Err)
				return
			}
		}
	})
}
