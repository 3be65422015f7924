package distance

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbernstein/chargeroute/backend-go/internal/models"
)

type span struct {
	start, end time.Time
}

// recordingResolver returns the destination latitude as the distance and
// records when each pair ran. Destinations are indexed by latitude.
type recordingResolver struct {
	mu       sync.Mutex
	delay    time.Duration
	spans    map[int]span
	inFlight int
	maxSeen  int
}

func newRecordingResolver(delay time.Duration) *recordingResolver {
	return &recordingResolver{delay: delay, spans: make(map[int]span)}
}

func (r *recordingResolver) Resolve(ctx context.Context, origin, destination models.Coordinate) float64 {
	r.mu.Lock()
	r.inFlight++
	if r.inFlight > r.maxSeen {
		r.maxSeen = r.inFlight
	}
	start := time.Now()
	r.mu.Unlock()

	time.Sleep(r.delay)

	r.mu.Lock()
	r.inFlight--
	r.spans[int(destination.Lat)] = span{start: start, end: time.Now()}
	r.mu.Unlock()
	return destination.Lat
}

func indexedTasks(n int) []models.DestinationTask {
	tasks := make([]models.DestinationTask, n)
	for i := range tasks {
		tasks[i] = models.DestinationTask{
			ID:          "station-" + strconv.Itoa(i),
			Destination: models.Coordinate{Lat: float64(i)},
		}
	}
	return tasks
}

func TestResolveBatchEmpty(t *testing.T) {
	s := NewScheduler(newRecordingResolver(0), DefaultWindowPause)
	called := false

	result := s.ResolveBatch(context.Background(), shanghai, nil, 5, func(completed, total int) {
		called = true
	})

	assert.Empty(t, result)
	assert.NotNil(t, result)
	assert.False(t, called)
}

func TestResolveBatchWindows(t *testing.T) {
	resolver := newRecordingResolver(20 * time.Millisecond)
	s := NewScheduler(resolver, 30*time.Millisecond)

	var progress []models.BatchProgress
	result := s.ResolveBatch(context.Background(), shanghai, indexedTasks(12), 5, func(completed, total int) {
		progress = append(progress, models.BatchProgress{Completed: completed, Total: total})
	})

	require.Len(t, result, 12)
	for i := 0; i < 12; i++ {
		km, ok := result.Value("station-" + strconv.Itoa(i))
		require.True(t, ok)
		assert.Equal(t, float64(i), km)
	}

	require.Len(t, progress, 12)
	for i, p := range progress {
		assert.Equal(t, i+1, p.Completed)
		assert.Equal(t, 12, p.Total)
	}
	assert.Equal(t, models.BatchProgress{Completed: 12, Total: 12}, progress[11])

	assert.LessOrEqual(t, resolver.maxSeen, 5)

	// windows are [0,5) [5,10) [10,12); each starts after the previous ends plus the pause
	windows := [][2]int{{0, 5}, {5, 10}, {10, 12}}
	for w := 1; w < len(windows); w++ {
		var prevEnd time.Time
		for i := windows[w-1][0]; i < windows[w-1][1]; i++ {
			if resolver.spans[i].end.After(prevEnd) {
				prevEnd = resolver.spans[i].end
			}
		}
		for i := windows[w][0]; i < windows[w][1]; i++ {
			assert.GreaterOrEqual(t, resolver.spans[i].start.Sub(prevEnd), 30*time.Millisecond,
				"pair %d started before window %d settled", i, w-1)
		}
	}
}

func TestResolveBatchNoPauseAfterLastWindow(t *testing.T) {
	s := NewScheduler(newRecordingResolver(0), 500*time.Millisecond)

	start := time.Now()
	s.ResolveBatch(context.Background(), shanghai, indexedTasks(3), 5, nil)

	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestResolveBatchDefaultsConcurrency(t *testing.T) {
	resolver := newRecordingResolver(10 * time.Millisecond)
	s := NewScheduler(resolver, 0)

	result := s.ResolveBatch(context.Background(), shanghai, indexedTasks(11), 0, nil)

	assert.Len(t, result, 11)
	assert.LessOrEqual(t, resolver.maxSeen, DefaultConcurrency)
}

func TestResolveBatchIndexIDs(t *testing.T) {
	tasks := []models.DestinationTask{
		{Destination: models.Coordinate{Lat: 1}},
		{ID: "named", Destination: models.Coordinate{Lat: 2}},
		{Destination: models.Coordinate{Lat: 3}},
	}
	s := NewScheduler(newRecordingResolver(0), 0)

	result := s.ResolveBatch(context.Background(), shanghai, tasks, 2, nil)

	assert.Len(t, result, 3)
	for _, id := range []string{"0", "named", "2"} {
		_, ok := result.Value(id)
		assert.True(t, ok, "missing %s", id)
	}
}
