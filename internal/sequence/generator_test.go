package sequence

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu       sync.Mutex
	counters map[Key]int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{counters: make(map[Key]int64)}
}

func (s *memoryStore) IncrementAndGet(ctx context.Context, key Key) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[key]++
	return s.counters[key], nil
}

func (s *memoryStore) Current(ctx context.Context, key Key) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters[key], nil
}

func TestFormatReceipt(t *testing.T) {
	require.Equal(t, "BPS-AGR-007", FormatReceipt("AGR", DocTypeBooking, 7))
	require.Equal(t, "BPS-Q-AGR-007", FormatReceipt("AGR", DocTypeQuotation, 7))
	require.Equal(t, "BPS-MUM-1234", FormatReceipt("MUM", DocTypeBooking, 1234))
}

func TestFormatInvoice(t *testing.T) {
	require.Equal(t, "BPS/AGR/0001", FormatInvoice("AGR", 1))
	require.Equal(t, "BPS/DEL/0042", FormatInvoice("DEL", 42))
}

func TestStationPrefix(t *testing.T) {
	require.Equal(t, "AGR", StationPrefix("Agra"))
	require.Equal(t, "MUM", StationPrefix("  mumbai central "))
	require.Equal(t, "GOA", StationPrefix("Goa"))
	require.Equal(t, "", StationPrefix(""))
}

func TestAllocateReceiptIncrements(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.counters[Key{StationCode: "MUM", DocType: DocTypeBooking}] = 12

	gen := NewGenerator(store)

	got, err := gen.AllocateReceipt(ctx, "MUM", DocTypeBooking)
	require.NoError(t, err)
	require.Equal(t, "BPS-MUM-013", got)

	got, err = gen.AllocateReceipt(ctx, "MUM", DocTypeBooking)
	require.NoError(t, err)
	require.Equal(t, "BPS-MUM-014", got)
}

func TestPreviewDoesNotMutate(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	store.counters[Key{StationCode: "MUM", DocType: DocTypeBooking}] = 12

	gen := NewGenerator(store)

	for i := 0; i < 5; i++ {
		got, err := gen.PreviewReceipt(ctx, "MUM", DocTypeBooking)
		require.NoError(t, err)
		require.Equal(t, "BPS-MUM-013", got)
	}

	got, err := gen.AllocateReceipt(ctx, "MUM", DocTypeBooking)
	require.NoError(t, err)
	require.Equal(t, "BPS-MUM-013", got)

	got, err = gen.PreviewReceipt(ctx, "MUM", DocTypeBooking)
	require.NoError(t, err)
	require.Equal(t, "BPS-MUM-014", got)
}

func TestDocTypesUseSeparateSequences(t *testing.T) {
	ctx := context.Background()
	gen := NewGenerator(newMemoryStore())

	booking, err := gen.AllocateReceipt(ctx, "AGR", DocTypeBooking)
	require.NoError(t, err)
	quotation, err := gen.AllocateReceipt(ctx, "AGR", DocTypeQuotation)
	require.NoError(t, err)

	require.Equal(t, "BPS-AGR-001", booking)
	require.Equal(t, "BPS-Q-AGR-001", quotation)
}

func TestConcurrentAllocationsAreDistinct(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	gen := NewGenerator(store)

	const workers = 50
	results := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := gen.AllocateReceipt(ctx, "DEL", DocTypeBooking)
			require.NoError(t, err)
			results <- got
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for got := range results {
		require.False(t, seen[got], "duplicate receipt number %s", got)
		seen[got] = true
	}
	require.Len(t, seen, workers)

	last, err := store.Current(ctx, Key{StationCode: "DEL", DocType: DocTypeBooking})
	require.NoError(t, err)
	require.EqualValues(t, workers, last)
}

func TestInvoiceNumbersKeyedByPrefix(t *testing.T) {
	ctx := context.Background()
	gen := NewGenerator(newMemoryStore())

	first, err := gen.AllocateInvoice(ctx, "Agra")
	require.NoError(t, err)
	require.Equal(t, "BPS/AGR/0001", first)

	// Stations sharing a 3-letter prefix share the sequence.
	second, err := gen.AllocateInvoice(ctx, "Agra Cantt")
	require.NoError(t, err)
	require.Equal(t, "BPS/AGR/0002", second)

	preview, err := gen.PreviewInvoice(ctx, "Agra")
	require.NoError(t, err)
	require.Equal(t, "BPS/AGR/0003", preview)
}
