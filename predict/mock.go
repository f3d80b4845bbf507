package predict

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/haruteam/dermai"
)

// DefaultMockDelay simulates the backend's network latency
const DefaultMockDelay = 1500 * time.Millisecond

// MockConditions are the labels the mock backend draws from
var MockConditions = []string{
	"Viêm da cơ địa (Atopic Dermatitis)",
	"Vảy nến (Psoriasis)",
	"Mụn trứng cá (Acne Vulgaris)",
	"Nấm da (Tinea Corporis)",
	"Viêm da tiếp xúc (Contact Dermatitis)",
	"Bớt sắc tố (Pigmented Nevus)",
	"Dày sừng ánh sáng (Actinic Keratosis)",
}

// MockClassifier returns a random condition after a simulated delay.
// It exists so the rest of the system can be exercised without a live
// classification backend.
type MockClassifier struct {
	Delay time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewMockClassifier creates a mock classifier with the default delay
func NewMockClassifier() *MockClassifier {
	return &MockClassifier{
		Delay: DefaultMockDelay,
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Classify waits the simulated latency and picks a label uniformly at random
func (m *MockClassifier) Classify(ctx context.Context, image dermai.ImageData) (string, error) {
	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(m.Delay):
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return MockConditions[m.rnd.Intn(len(MockConditions))], nil
}
