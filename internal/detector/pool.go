package detector

import (
	"sync"
)

// netPool holds a fixed set of loaded networks so concurrent requests never
// share a forward pass. All networks load the same weights once during pool
// construction.
type netPool struct {
	nets  chan *inferenceNet
	size  int
	close sync.Once
}

// newNetPool loads size copies of the network.
func newNetPool(size int, modelPath, configPath, device string) (*netPool, error) {
	p := &netPool{
		nets: make(chan *inferenceNet, size),
		size: size,
	}

	for i := 0; i < size; i++ {
		n, err := loadNet(modelPath, configPath, device)
		if err != nil {
			// close any instances created before the error
			p.Close()
			return nil, err
		}
		p.put(n)
	}

	return p, nil
}

// get borrows a network from the pool, blocking until one is free.
func (p *netPool) get() *inferenceNet {
	return <-p.nets
}

// put returns a network to the pool.
func (p *netPool) put(n *inferenceNet) {
	select {
	case p.nets <- n:
	default:
		// pool is full or closed
	}
}

// Close releases the pool and every network in it.
func (p *netPool) Close() {
	p.close.Do(func() {
		close(p.nets)

		for next := range p.nets {
			_ = next.Close()
		}
	})
}
