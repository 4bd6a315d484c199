package main

import (
	"math/rand"

	"github.com/leslie-fei/monomem"
)

var strSource = []byte("1234567890qwertyuiopasdfghjklzxcvbnm")

type workload struct {
	iterations int
	listSize   int
	maxString  int
	seed       int64
}

type entry struct {
	key   monomem.String
	value int
}

func randString(rnd *rand.Rand, b []byte) string {
	for i := range b {
		b[i] = strSource[rnd.Intn(len(strSource))]
	}
	return string(b)
}

// runWorkload fills a list and a pooled vector with arena strings every round,
// erases half of the list so later pushes recycle, and resets the allocator.
func runWorkload(config *monomem.Config, w workload) (report, error) {
	a, err := monomem.NewMonoAllocator(0, config)
	if err != nil {
		return report{}, err
	}
	defer a.Close()

	rnd := rand.New(rand.NewSource(w.seed))
	buf := make([]byte, max(w.maxString, 1))
	start := a.TakeSnapshot()

	pool := monomem.NewPoolAllocator(a)
	var peak uint64
	for round := 0; round < w.iterations; round++ {
		l := monomem.NewRecyclingList[entry](a)
		v := monomem.NewPooledVector[monomem.String](pool, 0)
		for i := 0; i < w.listSize; i++ {
			n := rnd.Intn(len(buf)) + 1
			key := monomem.NewString(a, randString(rnd, buf[:n]))
			l.PushBack(entry{key: key, value: i})
			if i%2 == 1 {
				l.PopFront()
			}
			v.Push(key)
		}
		if s := a.Stats(); s.AllocSize > peak {
			peak = s.AllocSize
		}
		l.Reset()
		pool.Reset()
		a.Reset(start)
	}

	monomem.LogStatistics(a)
	return report{
		Rounds:        w.iterations,
		PeakAllocSize: peak,
		Stats:         a.Stats(),
		DbgStats:      a.DbgStats(),
	}, nil
}
