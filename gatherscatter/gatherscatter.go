// Package gatherscatter implements the single-participant-side collective
// that gathers per-rank fragments onto a coordinator, ships the assembled
// global vector across an inter-participant connection, and scatters
// received data back out to the ranks that hold it.
package gatherscatter

import (
	"fmt"

	"github.com/arnegrim/meshmap/mesh"
)

// Communicator is the minimal transport contract this package consumes,
// shared by both the intra-participant worker link and the inter-participant
// coupling link: a connection check and blocking, byte-ordered send/receive
// of a float64 buffer to/from a numbered peer. Implementations surface
// failures as errors; this package performs no retry.
type Communicator interface {
	IsConnected() bool
	Send(buf []float64, peerRank int) error
	Receive(buf []float64, peerRank int) error
}

// Channel is a gather/scatter coupling channel bound to one rank of one
// participant. Rank 0 is the coordinator; ranks 1..Size-1 are workers.
type Channel struct {
	Intra        Communicator // intra-participant worker link; nil on single-rank participants
	Inter        Communicator // inter-participant coupling link; used by the coordinator only
	Distribution mesh.VertexDistribution
	Rank         int
	Size         int

	ownAssembly    *assemblyMatrix
	ownAssemblyDim int
}

// ownAssemblyMatrix returns the cached {0,1} assignment matrix for the
// coordinator's own distribution slice at the given value dimension,
// rebuilding it if the dimension has changed since the last call.
func (c *Channel) ownAssemblyMatrix(valueDim int) *assemblyMatrix {
	if c.ownAssembly == nil || c.ownAssemblyDim != valueDim {
		c.ownAssembly = buildAssemblyMatrix(c.Distribution[0], valueDim, c.Distribution.GlobalVertexCount())
		c.ownAssemblyDim = valueDim
	}
	return c.ownAssembly
}

func (c *Channel) checkPreconditions() {
	if c.Size <= 1 {
		panic(fmt.Sprintf("gatherscatter: channel requires more than one rank, got %d", c.Size))
	}
	if c.Rank < 0 || c.Rank >= c.Size {
		panic(fmt.Sprintf("gatherscatter: rank %d out of range [0,%d)", c.Rank, c.Size))
	}
}

// Send assembles and ships itemsToSend, a slice of localSize*valueDim values
// held by this rank, to the coordinator's peer. On a worker it forwards
// itemsToSend across the intra-participant link when it holds any vertices.
// On the coordinator it combines every rank's contribution into a global
// vector by summation at duplicated (halo) global indices, then sends the
// assembled vector across the inter-participant link.
func (c *Channel) Send(itemsToSend []float64, localSize, valueDim int) error {
	c.checkPreconditions()

	if c.Rank != 0 {
		if localSize > 0 {
			return c.Intra.Send(itemsToSend, 0)
		}
		return nil
	}

	globalSize := c.Distribution.GlobalVertexCount() * valueDim
	global := make([]float64, globalSize)

	c.ownAssemblyMatrix(valueDim).accumulateInto(global, itemsToSend)

	for rank := 1; rank < c.Size; rank++ {
		slaveSize := len(c.Distribution[rank]) * valueDim
		if slaveSize == 0 {
			continue
		}
		slaveValues := make([]float64, slaveSize)
		if err := c.Intra.Receive(slaveValues, rank); err != nil {
			return fmt.Errorf("gatherscatter: receiving contribution from rank %d: %w", rank, err)
		}
		for i, g := range c.Distribution[rank] {
			for d := 0; d < valueDim; d++ {
				global[g*valueDim+d] += slaveValues[i*valueDim+d]
			}
		}
	}

	if err := c.Inter.Send(global, 0); err != nil {
		return fmt.Errorf("gatherscatter: sending assembled global vector: %w", err)
	}
	return nil
}

// Receive is the inverse of Send: the coordinator pulls the global vector
// across the inter-participant link and fans each rank's slice back out,
// replicating duplicated (halo) global indices. itemsToReceive is the
// caller's localSize*valueDim buffer on every rank, written in place on the
// coordinator and over the intra-participant link on workers.
func (c *Channel) Receive(itemsToReceive []float64, localSize, valueDim int) error {
	c.checkPreconditions()

	if c.Rank != 0 {
		if localSize > 0 {
			return c.Intra.Receive(itemsToReceive, 0)
		}
		return nil
	}

	globalSize := c.Distribution.GlobalVertexCount() * valueDim
	global := make([]float64, globalSize)
	if err := c.Inter.Receive(global, 0); err != nil {
		return fmt.Errorf("gatherscatter: receiving assembled global vector: %w", err)
	}

	c.ownAssemblyMatrix(valueDim).scatterFrom(global, itemsToReceive)

	for rank := 1; rank < c.Size; rank++ {
		slaveSize := len(c.Distribution[rank]) * valueDim
		if slaveSize == 0 {
			continue
		}
		slaveValues := make([]float64, slaveSize)
		for i, g := range c.Distribution[rank] {
			for d := 0; d < valueDim; d++ {
				slaveValues[i*valueDim+d] = global[g*valueDim+d]
			}
		}
		if err := c.Intra.Send(slaveValues, rank); err != nil {
			return fmt.Errorf("gatherscatter: scattering to rank %d: %w", rank, err)
		}
	}
	return nil
}
