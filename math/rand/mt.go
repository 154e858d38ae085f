package rand

// mtParams are the parameters of a 32-bit Mersenne Twister.
type mtParams struct {
	n, m int
	r    uint
	a    uint32
	u    uint
	d    uint32
	s    uint
	b    uint32
	t    uint
	c    uint32
	l    uint
	f    uint32
}

var (
	mt11213bParams = mtParams{
		n: 351, m: 175, r: 19, a: 0xccab8ee7,
		u: 11, d: 0xffffffff, s: 7, b: 0x31b6ab00,
		t: 15, c: 0xffe50000, l: 17, f: 1812433253,
	}
	mt19937Params = mtParams{
		n: 624, m: 397, r: 31, a: 0x9908b0df,
		u: 11, d: 0xffffffff, s: 7, b: 0x9d2c5680,
		t: 15, c: 0xefc60000, l: 18, f: 1812433253,
	}
)

// mersenneTwister is a 32-bit Mersenne Twister with arbitrary parameters.
// Seeding follows the C++ standard library, so a given parameter set and
// seed produce the same stream as the corresponding std:: engine.
type mersenneTwister struct {
	p            *mtParams
	state        []uint32
	i            int
	upper, lower uint32
}

func newMersenneTwister(p *mtParams, seed uint32) *mersenneTwister {
	mt := &mersenneTwister{p: p, state: make([]uint32, p.n)}
	mt.upper = ^uint32(0) << p.r
	mt.lower = ^mt.upper
	mt.Seed(seed)
	return mt
}

// Seed resets the engine to the state determined by seed.
func (mt *mersenneTwister) Seed(seed uint32) {
	mt.state[0] = seed
	for i := 1; i < mt.p.n; i++ {
		prev := mt.state[i-1]
		mt.state[i] = mt.p.f*(prev^(prev>>30)) + uint32(i)
	}
	mt.i = mt.p.n
}

func (mt *mersenneTwister) twist() {
	n, m, a := mt.p.n, mt.p.m, mt.p.a
	for k := 0; k < n; k++ {
		y := (mt.state[k] & mt.upper) | (mt.state[(k+1)%n] & mt.lower)
		v := mt.state[(k+m)%n] ^ (y >> 1)
		if y&1 != 0 {
			v ^= a
		}
		mt.state[k] = v
	}
	mt.i = 0
}

// Uint32 returns the next tempered output of the engine.
func (mt *mersenneTwister) Uint32() uint32 {
	if mt.i >= mt.p.n {
		mt.twist()
	}

	y := mt.state[mt.i]
	mt.i++

	p := mt.p
	y ^= (y >> p.u) & p.d
	y ^= (y << p.s) & p.b
	y ^= (y << p.t) & p.c
	y ^= y >> p.l
	return y
}
