package orchestrator

import (
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/ralt/repodiff/internal/differ"
	"github.com/ralt/repodiff/internal/models"
)

// progressStep is the percentage between two progress log lines
const progressStep = 10

// LogProgress logs comparison progress at debug level in 10% steps
func LogProgress(label models.Label) differ.Observer {
	lastStep := -1
	return func(done, total int) {
		if total == 0 {
			return
		}
		step := done * 100 / total / progressStep
		if step == lastStep {
			return
		}
		lastStep = step
		logrus.Debugf("Comparing %s: %.2f%% (%s/%s)", label,
			float64(done)*100/float64(total),
			humanize.Comma(int64(done)), humanize.Comma(int64(total)))
	}
}
