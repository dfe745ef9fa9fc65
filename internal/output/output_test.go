package output

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-mixer/internal/fixedpoint"
	"github.com/tphakala/go-audio-mixer/internal/format"
	"github.com/tphakala/go-audio-mixer/internal/packetqueue"
	"github.com/tphakala/go-audio-mixer/internal/sampler"
	"github.com/tphakala/go-audio-mixer/internal/timeline"
)

const testRate = 48000

// fakeDevice serves a fixed script of one buffer per Process cycle.
type fakeDevice struct {
	buf        []byte
	bufFrames  int
	startFrame int64
	jobsLeft   int

	nextMix  time.Time
	curFrame int64
}

func (d *fakeDevice) StartMixJob(job *MixJob, now time.Time) bool {
	if d.jobsLeft == 0 {
		return false
	}
	d.jobsLeft--
	job.Buffer = d.buf
	job.BufFrames = d.bufFrames
	job.StartFrame = d.startFrame
	return true
}

func (d *fakeDevice) FinishMixJob(job *MixJob) bool { return false }
func (d *fakeDevice) NextMixTime() time.Time        { return d.nextMix }
func (d *fakeDevice) CurrentFrame() int64           { return d.curFrame }

func monoFormat(sf format.SampleFormat) format.Format {
	return format.Format{SampleFormat: sf, Channels: 1, FramesPerSecond: testRate}
}

// unityTimeline maps destination frame n to fractional source frame n.
func unityTimeline() timeline.Function {
	return timeline.NewFunction(0, 0, timeline.NewRate(uint64(fixedpoint.One), 1))
}

func newTestLink(t *testing.T) (*Link, *packetqueue.Queue) {
	t.Helper()
	m, err := sampler.Select(monoFormat(format.Float32), monoFormat(format.Signed16), sampler.ResamplerPoint)
	require.NoError(t, err)
	t.Cleanup(m.Close)

	q := packetqueue.NewQueue()
	return NewLink(q, m, unityTimeline()), q
}

func newTestOutput(t *testing.T, d Device, sf format.SampleFormat) *StandardOutput {
	t.Helper()
	o, err := NewStandardOutput(d, Config{Format: monoFormat(sf), MaxJobFrames: 64})
	require.NoError(t, err)
	return o
}

func TestProcess_MixesPacketIntoDeviceBuffer(t *testing.T) {
	dev := &fakeDevice{buf: make([]byte, 8), bufFrames: 4, jobsLeft: 1}
	o := newTestOutput(t, dev, format.Signed16)

	link, q := newTestLink(t)
	o.AddLink(link)

	completed := false
	q.Push(packetqueue.NewPacket(0, 4,
		[]float32{0.5, -0.5, 0.25, -0.25}, func() { completed = true }))

	o.Process(time.Now())

	want := []int16{16384, -16384, 8192, -8192}
	for i, w := range want {
		got := int16(binary.LittleEndian.Uint16(dev.buf[2*i:]))
		assert.Equal(t, w, got, "frame %d", i)
	}
	assert.True(t, completed, "consumed packet must complete")
	assert.True(t, q.Empty())
}

func TestProcess_FuturePacketStartsAtItsDueFrame(t *testing.T) {
	dev := &fakeDevice{buf: make([]byte, 12), bufFrames: 6, jobsLeft: 1}
	o := newTestOutput(t, dev, format.Signed16)

	link, q := newTestLink(t)
	o.AddLink(link)

	q.Push(packetqueue.NewPacket(fixedpoint.FromFrames(2), 4,
		[]float32{0.5, 0.5, 0.5, 0.5}, nil))

	o.Process(time.Now())

	for i := 0; i < 2; i++ {
		assert.Equal(t, int16(0), int16(binary.LittleEndian.Uint16(dev.buf[2*i:])), "frame %d silent", i)
	}
	for i := 2; i < 6; i++ {
		assert.Equal(t, int16(16384), int16(binary.LittleEndian.Uint16(dev.buf[2*i:])), "frame %d", i)
	}
	assert.True(t, q.Empty())
}

func TestProcess_TwoLinksAccumulate(t *testing.T) {
	dev := &fakeDevice{buf: make([]byte, 4), bufFrames: 2, jobsLeft: 1}
	o := newTestOutput(t, dev, format.Signed16)

	linkA, qA := newTestLink(t)
	linkB, qB := newTestLink(t)
	o.AddLink(linkA)
	o.AddLink(linkB)

	qA.Push(packetqueue.NewPacket(0, 2, []float32{0.25, 0.25}, nil))
	qB.Push(packetqueue.NewPacket(0, 2, []float32{0.5, -0.75}, nil))

	o.Process(time.Now())

	assert.Equal(t, int16(24576), int16(binary.LittleEndian.Uint16(dev.buf[0:])))
	assert.Equal(t, int16(-16384), int16(binary.LittleEndian.Uint16(dev.buf[2:])))
}

func TestProcess_MutedFillsSilenceWithoutConsuming(t *testing.T) {
	dev := &fakeDevice{buf: make([]byte, 4), bufFrames: 4, jobsLeft: 1}
	o := newTestOutput(t, dev, format.Unsigned8)

	link, q := newTestLink(t)
	o.AddLink(link)
	q.Push(packetqueue.NewPacket(fixedpoint.FromFrames(1), 2, []float32{1, 1}, nil))

	o.SetMuted(true)
	o.Process(time.Now())

	assert.Equal(t, []byte{0x80, 0x80, 0x80, 0x80}, dev.buf)
	assert.False(t, q.Empty(), "muted cycle must not consume packets")
}

func TestProcess_IdleCycleTrimsStalePackets(t *testing.T) {
	dev := &fakeDevice{jobsLeft: 0, curFrame: 100}
	o := newTestOutput(t, dev, format.Signed16)

	link, q := newTestLink(t)
	o.AddLink(link)

	completed := false
	q.Push(packetqueue.NewPacket(0, 4, make([]float32, 4), func() { completed = true }))
	// This one is still current and must survive the trim.
	q.Push(packetqueue.NewPacket(fixedpoint.FromFrames(99), 4, make([]float32, 4), nil))

	o.Process(time.Now())

	assert.True(t, completed, "stale packet must be trimmed and completed")
	assert.False(t, q.Empty(), "current packet must survive")
}

func TestProcess_NextWakeCappedByTrimPeriod(t *testing.T) {
	now := time.Now()
	dev := &fakeDevice{jobsLeft: 0, nextMix: now.Add(time.Hour)}
	o := newTestOutput(t, dev, format.Signed16)

	next := o.Process(now)
	assert.Equal(t, now.Add(maxTrimPeriod), next)

	dev.nextMix = now.Add(time.Millisecond)
	next = o.Process(now.Add(maxTrimPeriod))
	assert.Equal(t, dev.nextMix, next)
}

func TestProcess_RemovedLinkIgnored(t *testing.T) {
	dev := &fakeDevice{buf: make([]byte, 4), bufFrames: 2, jobsLeft: 1}
	o := newTestOutput(t, dev, format.Signed16)

	link, q := newTestLink(t)
	o.AddLink(link)
	o.RemoveLink(link)

	q.Push(packetqueue.NewPacket(0, 2, []float32{1, 1}, nil))
	o.Process(time.Now())

	assert.Equal(t, []byte{0, 0, 0, 0}, dev.buf)
	assert.False(t, q.Empty())
}

func TestLink_TimelineRetarget(t *testing.T) {
	link, _ := newTestLink(t)

	// Retarget so destination frame 0 maps to source frame 10.
	link.SetSourceTimeline(timeline.NewFunction(
		int64(fixedpoint.FromFrames(10)), 0, timeline.NewRate(uint64(fixedpoint.One), 1)))
	link.refreshBookkeeping()

	assert.Equal(t, fixedpoint.FromFrames(10), link.destToFracSource(0))
	assert.Equal(t, fixedpoint.FromFrames(15), link.destToFracSource(5))
}
