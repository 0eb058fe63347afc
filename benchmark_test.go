package bahc

import (
	"testing"

	"github.com/rs/zerolog"
)

// --- Average linkage ---

func benchAverageLinkage(b *testing.B, n int) {
	b.Helper()
	condensed := Condensed(randomDistances(n, 42))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := (AverageLinkage{}).Link(condensed, n); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAverageLinkage_50(b *testing.B)  { benchAverageLinkage(b, 50) }
func BenchmarkAverageLinkage_200(b *testing.B) { benchAverageLinkage(b, 200) }
func BenchmarkAverageLinkage_500(b *testing.B) { benchAverageLinkage(b, 500) }

// --- Multi-order filter ---

func benchFilterOrders(b *testing.B, n, maxOrder int) {
	b.Helper()
	corr := correlation(gaussianSample(n, 2*n, 42))
	orders := make([]int, maxOrder)
	for k := range orders {
		orders[k] = k + 1
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := FilterOrders(corr, orders, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFilterOrders_50x1(b *testing.B)  { benchFilterOrders(b, 50, 1) }
func BenchmarkFilterOrders_50x3(b *testing.B)  { benchFilterOrders(b, 50, 3) }
func BenchmarkFilterOrders_200x1(b *testing.B) { benchFilterOrders(b, 200, 1) }

// --- Regularizers ---

func BenchmarkNoNeg_100(b *testing.B) {
	x := randomUnitDiagonal(100, 42)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := NoNeg(x); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkNear_50(b *testing.B) {
	x := randomUnitDiagonal(50, 42)
	logger := zerolog.Nop()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := Near(x, NearConfig{Logger: &logger}); err != nil {
			b.Fatal(err)
		}
	}
}

// --- Full pipeline ---

func benchFilter(b *testing.B, n, t, workers int) {
	b.Helper()
	sample := gaussianSample(n, t, 42)
	logger := zerolog.Nop()
	cfg := DefaultConfig()
	cfg.Bootstraps = 20
	cfg.Workers = workers
	cfg.Logger = &logger
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Filter(sample, cfg); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFilter_30x60_Serial(b *testing.B)   { benchFilter(b, 30, 60, 1) }
func BenchmarkFilter_30x60_Parallel(b *testing.B) { benchFilter(b, 30, 60, 0) }
