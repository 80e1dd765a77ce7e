package gatherscatter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnegrim/meshmap/mesh"
)

// loopbackIntra is a fake intra-participant Communicator: Send stores a copy
// of the buffer keyed by the peer rank it is addressed to, and Receive reads
// back the buffer stored under the given peer rank. Tests move buffers
// between fakes to model the wire between a worker and the coordinator.
type loopbackIntra struct {
	buffers map[int][]float64
}

func newLoopbackIntra() *loopbackIntra { return &loopbackIntra{buffers: make(map[int][]float64)} }

func (l *loopbackIntra) IsConnected() bool { return true }

func (l *loopbackIntra) Send(buf []float64, peerRank int) error {
	// Sent from a worker to the coordinator; the caller's own rank isn't
	// passed, so tests drive Send/Receive directly against the rank whose
	// contribution is being modeled (see TestGatherScatterIdempotence).
	l.buffers[peerRank] = append([]float64{}, buf...)
	return nil
}

func (l *loopbackIntra) Receive(buf []float64, peerRank int) error {
	src, ok := l.buffers[peerRank]
	if !ok {
		return fmt.Errorf("no buffer from rank %d", peerRank)
	}
	copy(buf, src)
	return nil
}

// loopbackInter models the inter-participant link as a single-slot mailbox:
// whatever the coordinator sends is exactly what it (or its peer) receives
// back, used here to test send-then-receive idempotence in one process.
type loopbackInter struct {
	buf []float64
}

func (l *loopbackInter) IsConnected() bool { return true }
func (l *loopbackInter) Send(buf []float64, peerRank int) error {
	l.buf = append([]float64{}, buf...)
	return nil
}
func (l *loopbackInter) Receive(buf []float64, peerRank int) error {
	copy(buf, l.buf)
	return nil
}

func TestGatherScatterIdempotence(t *testing.T) {
	dist := mesh.VertexDistribution{{0, 1}, {2, 3}}
	inter := &loopbackInter{}

	// Rank 1 (worker) sends its contribution over its own intra link.
	workerIntra := newLoopbackIntra()
	worker := &Channel{Intra: workerIntra, Distribution: dist, Rank: 1, Size: 2}
	require.NoError(t, worker.Send([]float64{30, 40}, 2, 1))

	// Rank 0 (coordinator) gathers its own contribution plus rank 1's
	// (received from the same shared buffer, simulating the wire) and ships
	// the assembled vector across inter.
	coordIntra := newLoopbackIntra()
	coordIntra.buffers[1] = workerIntra.buffers[0]
	coordinator := &Channel{Intra: coordIntra, Inter: inter, Distribution: dist, Rank: 0, Size: 2}
	require.NoError(t, coordinator.Send([]float64{10, 20}, 2, 1))

	assert.Equal(t, []float64{10, 20, 30, 40}, inter.buf)

	// Now receive back through the same channel: the coordinator should see
	// its own slice directly, and ship rank 1's slice back over intra.
	recvCoordIntra := newLoopbackIntra()
	recvCoordinator := &Channel{Intra: recvCoordIntra, Inter: inter, Distribution: dist, Rank: 0, Size: 2}
	coordReceived := make([]float64, 2)
	require.NoError(t, recvCoordinator.Receive(coordReceived, 2, 1))
	assert.Equal(t, []float64{10, 20}, coordReceived)

	recvWorkerIntra := newLoopbackIntra()
	recvWorkerIntra.buffers[0] = recvCoordIntra.buffers[1]
	recvWorker := &Channel{Intra: recvWorkerIntra, Distribution: dist, Rank: 1, Size: 2}
	workerReceived := make([]float64, 2)
	require.NoError(t, recvWorker.Receive(workerReceived, 2, 1))
	assert.Equal(t, []float64{30, 40}, workerReceived)
}

func TestChannelPreconditions(t *testing.T) {
	dist := mesh.VertexDistribution{{0}}
	c := &Channel{Distribution: dist, Rank: 0, Size: 1}
	assert.Panics(t, func() { _ = c.Send([]float64{1}, 1, 1) })

	c2 := &Channel{Distribution: dist, Rank: 5, Size: 2}
	assert.Panics(t, func() { _ = c2.Send([]float64{1}, 1, 1) })
}
