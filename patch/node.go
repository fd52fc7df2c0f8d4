// SPDX-License-Identifier: EPL-2.0

package patch

// Processor transforms a block of mixed samples in place.
type Processor interface {
	Process(samples []float32)
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(samples []float32)

func (f ProcessorFunc) Process(samples []float32) { f(samples) }

// Gain is a Processor that scales every sample.
type Gain float32

func (g Gain) Process(samples []float32) {
	for i := range samples {
		samples[i] *= float32(g)
	}
}

// Node joins a Mixer to a Splitter through a Processor, which is how
// effects are inserted into a patch graph.
type Node struct {
	mixer    *Mixer
	splitter *Splitter
	proc     Processor
	scratch  []float32
}

// NewNode returns a Node running p on every block. A nil p passes audio
// through unchanged.
func NewNode(p Processor, opts ...Option) *Node {
	return &Node{
		mixer:    NewMixer(opts...),
		splitter: NewSplitter(opts...),
		proc:     p,
	}
}

// AddNewInput connects a producer to the Node's mixer.
func (n *Node) AddNewInput(maxLatency int, gain float32) *Input {
	return n.mixer.AddNewInput(maxLatency, gain)
}

// AddNewOutput connects a consumer to the Node's splitter.
func (n *Node) AddNewOutput(maxLatency int, gain float32) *Output {
	return n.splitter.AddNewPatch(maxLatency, gain)
}

// Process forwards as many samples as every input has buffered and every
// output can take, and returns that count. Zero means there was nothing to
// read or nowhere to write. Process must be called from one goroutine.
func (n *Node) Process() int {
	poppable, err := n.mixer.MaxPoppable()
	if err != nil {
		return 0
	}
	pushable, err := n.splitter.MaxPushable()
	if err != nil {
		return 0
	}

	count := min(poppable, pushable)
	if count <= 0 {
		return 0
	}

	if cap(n.scratch) < count {
		n.scratch = make([]float32, count)
	}
	block := n.scratch[:count]

	popped, err := n.mixer.Pop(block, false)
	if err != nil {
		return 0
	}
	block = block[:popped]

	if n.proc != nil {
		n.proc.Process(block)
	}

	if _, err := n.splitter.Push(block); err != nil {
		return 0
	}
	return popped
}
