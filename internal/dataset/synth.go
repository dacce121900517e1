package dataset

import (
	"fmt"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// Synthesis parameters: scores are drawn from a normal distribution and
// clipped to the valid range, matching the shape of real score data.
const (
	synthScoreMu    = 75
	synthScoreSigma = 15
	synthMinStudent = 1000
	synthMaxStudent = 2000
)

var synthSubjects = []string{"Math", "Science", "English", "History"}

// Synthesize generates n random score rows for a given seed. The same
// seed always yields the same rows, so fixtures and demo databases are
// reproducible. Derived fields are left for ApplyScoring/ApplyPeriods.
func Synthesize(n int, seed uint64) []Row {
	src := rand.NewPCG(seed, 0)
	rng := rand.New(src)
	normal := distuv.Normal{Mu: synthScoreMu, Sigma: synthScoreSigma, Src: src}

	yearStart := time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		score := normal.Rand()
		if score < 0 {
			score = 0
		} else if score > 100 {
			score = 100
		}

		id := synthMinStudent + rng.IntN(synthMaxStudent-synthMinStudent+1)
		rows = append(rows, Row{
			StudentID:   id,
			StudentName: fmt.Sprintf("Student %d", id),
			GradeLevel:  fmt.Sprintf("%d", 9+rng.IntN(4)),
			SubjectName: synthSubjects[rng.IntN(len(synthSubjects))],
			Date:        yearStart.AddDate(0, 0, rng.IntN(365)),
			Score:       score,
			Weight:      1,
		})
	}
	return rows
}
