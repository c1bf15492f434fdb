package feed

// Park-Miller "minimal standard" generator parameters
const (
	lcgModulus    = 2147483647 // 2^31 - 1
	lcgMultiplier = 48271
)

// lcg is a Lehmer linear congruential generator. The app replays feed
// builds from a stored seed (pull-to-refresh retries, pagination), so
// the stream has to be identical across runs and platforms.
type lcg struct {
	state uint64
}

// newLCG seeds the generator. State must land in [1, modulus-1];
// multiples of the modulus would otherwise get stuck at zero.
func newLCG(seed uint32) *lcg {
	state := uint64(seed) % lcgModulus
	if state == 0 {
		state = 1
	}
	return &lcg{state: state}
}

// Float64 returns the next value in [0, 1)
func (g *lcg) Float64() float64 {
	g.state = g.state * lcgMultiplier % lcgModulus
	return float64(g.state-1) / float64(lcgModulus-1)
}
