package montecarlo

import (
	"fmt"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/rs/zerolog/log"
)

// ScoreDetails renders, for the top candidates, a histogram of the
// largest village size the simming player ended playouts with. Useful
// for seeing whether a candidate wins big or merely often.
func (s *Simmer) ScoreDetails(nplays int) string {
	var ss strings.Builder
	s.sortPlaysByWinRate()
	plays := s.simmedPlays
	if nplays > 0 && len(plays) > nplays {
		plays = plays[:nplays]
	}
	for idx, sp := range plays {
		fmt.Fprintf(&ss, "%d) %s  mean %.3f over %d playouts\n", idx+1,
			sp.play.ShortDescription(), sp.winStats.Mean(), sp.winStats.Iterations())
		if len(sp.finalSizes) == 0 {
			continue
		}
		hist := histogram.Hist(10, sp.finalSizes)
		if err := histogram.Fprint(&ss, hist, histogram.Linear(40)); err != nil {
			log.Err(err).Msg("rendering histogram")
		}
		ss.WriteString("\n")
	}
	fmt.Fprintf(&ss, "Iterations: %d\n", s.iterationCount)
	return ss.String()
}
