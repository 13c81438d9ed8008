package sampler

import (
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/xtxerr/utiltrack/internal/errors"
	"github.com/xtxerr/utiltrack/internal/metrics"
)

// gpuQuerier abstracts the GPU backend so tests can substitute one.
type gpuQuerier interface {
	// Probe checks availability once and returns the GPU count.
	Probe() (int, error)

	// Query returns one sample per GPU stamped with ts.
	Query(ts time.Time) ([]metrics.GPUSample, error)
}

// gpuQueryFields is the nvidia-smi field list, in parse order.
const gpuQueryFields = "index,name,utilization.gpu,utilization.memory," +
	"memory.total,memory.used,temperature.gpu,power.draw,power.limit,fan.speed"

// nvidiaSMI queries NVIDIA GPUs by shelling out to nvidia-smi.
type nvidiaSMI struct{}

func (nvidiaSMI) Probe() (int, error) {
	if _, err := exec.LookPath("nvidia-smi"); err != nil {
		return 0, errors.Wrap(errors.ErrUnavailable, "nvidia-smi not found")
	}

	out, err := exec.Command("nvidia-smi", "--query-gpu=count",
		"--format=csv,noheader").Output()
	if err != nil {
		return 0, errors.Wrap(err, "nvidia-smi probe")
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	count, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil || count < 1 {
		return 0, errors.Wrap(errors.ErrUnavailable, "no GPUs reported")
	}
	return count, nil
}

func (nvidiaSMI) Query(ts time.Time) ([]metrics.GPUSample, error) {
	out, err := exec.Command("nvidia-smi", "--query-gpu="+gpuQueryFields,
		"--format=csv,noheader,nounits").Output()
	if err != nil {
		return nil, errors.Wrap(err, "nvidia-smi query")
	}
	return parseGPUCSV(string(out), ts), nil
}

// parseGPUCSV parses nvidia-smi CSV output. Lines that do not parse are
// skipped; fields reported as "[N/A]" become absent values.
func parseGPUCSV(out string, ts time.Time) []metrics.GPUSample {
	var samples []metrics.GPUSample

	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.Split(line, ", ")
		if len(fields) < 10 {
			continue
		}

		index, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			continue
		}

		sample := metrics.GPUSample{
			Timestamp: ts,
			Index:     index,
			Name:      strings.TrimSpace(fields[1]),
		}

		if v, ok := parseSMIFloat(fields[2]); ok {
			sample.Utilization = v
		}
		if v, ok := parseSMIFloat(fields[3]); ok {
			sample.MemoryUtilization = v
		}
		// memory.total and memory.used are reported in MiB.
		if v, ok := parseSMIFloat(fields[4]); ok {
			sample.MemoryTotal = uint64(v) * 1024 * 1024
		}
		if v, ok := parseSMIFloat(fields[5]); ok {
			sample.MemoryUsed = uint64(v) * 1024 * 1024
		}
		if v, ok := parseSMIFloat(fields[6]); ok {
			sample.Temperature = metrics.Float64Ptr(v)
		}
		if v, ok := parseSMIFloat(fields[7]); ok {
			sample.PowerDraw = metrics.Float64Ptr(v)
		}
		if v, ok := parseSMIFloat(fields[8]); ok {
			sample.PowerLimit = metrics.Float64Ptr(v)
		}
		if v, ok := parseSMIFloat(fields[9]); ok {
			sample.FanSpeed = metrics.Float64Ptr(v)
		}

		samples = append(samples, sample)
	}

	return samples
}

// parseSMIFloat parses a numeric nvidia-smi field. "[N/A]" and
// "[Not Supported]" are reported by smi for values the board lacks.
func parseSMIFloat(field string) (float64, bool) {
	field = strings.TrimSpace(field)
	if field == "" || strings.HasPrefix(field, "[") {
		return 0, false
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
