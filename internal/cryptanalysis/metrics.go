// Package cryptanalysis runs nine weighted statistical metrics against a
// candidate cipher output and folds them into one aggregate score under
// either of the two scoring modes.
//
// Every metric's Score is oriented so that higher is better and the
// generic "passed: score >= threshold" semantic holds uniformly — metrics whose raw measurement is "near 0.5 is good" or "low
// is good" are rescaled here into that higher-is-better orientation before
// being reported, rather than leaking a metric-specific comparison
// direction into the AnalysisResult struct.
package cryptanalysis

import (
	"math"

	"github.com/rawblock/cryptomunge/pkg/models"
)

// shannonEntropy returns the Shannon entropy, in bits per byte, of buf.
func shannonEntropy(buf []byte) float64 {
	if len(buf) == 0 {
		return 0
	}
	var counts [256]int
	for _, b := range buf {
		counts[b]++
	}
	n := float64(len(buf))
	var h float64
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	return h
}

// metricEntropy: "Shannon entropy of ciphertext, high is
// good". Score is entropy directly (0-8); threshold is a lower bound.
func metricEntropy(ciphertext []byte) (score float64, notes string) {
	h := shannonEntropy(ciphertext)
	return h, "bits/byte over ciphertext payload"
}

// bitOnesFraction returns the fraction of set bits across buf.
func bitOnesFraction(buf []byte) float64 {
	if len(buf) == 0 {
		return 0.5
	}
	var ones, total int
	for _, b := range buf {
		for i := 0; i < 8; i++ {
			if b&(1<<i) != 0 {
				ones++
			}
			total++
		}
	}
	return float64(ones) / float64(total)
}

// centeredScore rescales a raw value whose ideal point is 0.5 into a
// higher-is-better [0,1] score: 1.0 at the ideal point, 0.0 at either
// extreme.
func centeredScore(raw float64) float64 {
	s := 1 - 2*math.Abs(raw-0.5)
	if s < 0 {
		s = 0
	}
	return s
}

// metricBitVariance: "per-bit frequency balance, near 0.5 is
// good".
func metricBitVariance(ciphertext []byte) (score float64, notes string) {
	raw := bitOnesFraction(ciphertext)
	return centeredScore(raw), "fraction of set bits across payload"
}

// metricSlidingWindow: "local similarity across sliding
// window, low is good". Computed as the average normalized Hamming
// similarity between consecutive fixed-size windows; rescaled so lower
// similarity (less local repetition) yields a higher score.
func metricSlidingWindow(ciphertext []byte) (score float64, notes string) {
	const window = 64
	if len(ciphertext) < window*2 {
		return 1, "buffer too small for sliding window analysis"
	}
	var totalSim float64
	var samples int
	for start := 0; start+2*window <= len(ciphertext); start += window {
		a := ciphertext[start : start+window]
		b := ciphertext[start+window : start+2*window]
		same := 0
		for i := range a {
			if a[i] == b[i] {
				same++
			}
		}
		totalSim += float64(same) / float64(window)
		samples++
	}
	if samples == 0 {
		return 1, "no window pairs available"
	}
	avgSim := totalSim / float64(samples)
	return 1 - avgSim, "avg byte-position similarity across adjacent windows"
}

// metricFrequencyDistribution: "byte histogram uniformity
// (chi-squared-like), low deviation is good".
func metricFrequencyDistribution(ciphertext []byte) (score float64, notes string) {
	if len(ciphertext) == 0 {
		return 1, "empty payload"
	}
	var counts [256]int
	for _, b := range ciphertext {
		counts[b]++
	}
	n := float64(len(ciphertext))
	expected := n / 256
	var chiSq float64
	for _, c := range counts {
		d := float64(c) - expected
		chiSq += d * d / expected
	}
	// Normalize against the chi-squared value a maximally skewed histogram
	// (all mass in one bucket) would produce, so the result lands in [0,1].
	maxChiSq := (n-expected)*(n-expected)/expected + 255*expected
	normalized := chiSq / maxChiSq
	if normalized > 1 {
		normalized = 1
	}
	return 1 - normalized, "normalized chi-squared deviation from uniform histogram"
}

// metricPeriodicityCheck: "autocorrelation peaks, low is
// good".
func metricPeriodicityCheck(ciphertext []byte) (score float64, notes string) {
	n := len(ciphertext)
	if n < 32 {
		return 1, "buffer too small for periodicity analysis"
	}
	maxLag := n / 4
	if maxLag > 256 {
		maxLag = 256
	}
	var peak float64
	for lag := 1; lag <= maxLag; lag++ {
		matches := 0
		compared := n - lag
		for i := 0; i < compared; i++ {
			if ciphertext[i] == ciphertext[i+lag] {
				matches++
			}
		}
		corr := float64(matches) / float64(compared)
		if corr > peak {
			peak = corr
		}
	}
	// Baseline match rate for independent random bytes is ~1/256.
	baseline := 1.0 / 256.0
	excess := (peak - baseline) / (1 - baseline)
	if excess < 0 {
		excess = 0
	}
	return 1 - excess, "strongest autocorrelation peak over lags 1..maxLag"
}

// pearson computes the Pearson correlation coefficient between two
// equal-length byte slices, truncating to the shorter length.
func pearson(a, b []byte) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	var sumA, sumB float64
	for i := 0; i < n; i++ {
		sumA += float64(a[i])
		sumB += float64(b[i])
	}
	meanA, meanB := sumA/float64(n), sumB/float64(n)
	var num, denA, denB float64
	for i := 0; i < n; i++ {
		da := float64(a[i]) - meanA
		db := float64(b[i]) - meanB
		num += da * db
		denA += da * da
		denB += db * db
	}
	if denA == 0 || denB == 0 {
		return 0
	}
	return num / math.Sqrt(denA*denB)
}

// metricMangosCorrelation: "domain-specific dependence
// between plaintext and ciphertext, low is good". Implemented as the
// absolute Pearson correlation between the plaintext and ciphertext byte
// streams.
func metricMangosCorrelation(plaintext, ciphertext []byte) (score float64, notes string) {
	corr := math.Abs(pearson(plaintext, ciphertext))
	if corr > 1 {
		corr = 1
	}
	return 1 - corr, "|Pearson correlation| between plaintext and ciphertext byte streams"
}

// metricPositionalMapping: "positional bias of bytes, low is
// good". Buckets the payload into fixed-size positional slots and
// measures how much each slot's mean byte value deviates from the global
// mean.
func metricPositionalMapping(ciphertext []byte) (score float64, notes string) {
	const buckets = 16
	n := len(ciphertext)
	if n < buckets {
		return 1, "buffer too small for positional analysis"
	}
	bucketSize := n / buckets
	var globalSum float64
	for _, b := range ciphertext {
		globalSum += float64(b)
	}
	globalMean := globalSum / float64(n)

	var variance float64
	for i := 0; i < buckets; i++ {
		start := i * bucketSize
		end := start + bucketSize
		if i == buckets-1 {
			end = n
		}
		var sum float64
		for _, b := range ciphertext[start:end] {
			sum += float64(b)
		}
		mean := sum / float64(end-start)
		d := mean - globalMean
		variance += d * d
	}
	variance /= float64(buckets)
	// Normalize against the maximum possible per-bucket mean deviation
	// (global mean sitting at one extreme, buckets at the other).
	maxDev := math.Max(globalMean, 255-globalMean)
	normalized := 0.0
	if maxDev > 0 {
		normalized = math.Sqrt(variance) / maxDev
	}
	if normalized > 1 {
		normalized = 1
	}
	return 1 - normalized, "normalized variance of per-bucket mean byte value"
}

// hammingRatio returns the fraction of differing bits between a and b,
// truncating to the shorter length.
func hammingRatio(a, b []byte) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return 0
	}
	diffBits, totalBits := 0, 0
	for i := 0; i < n; i++ {
		x := a[i] ^ b[i]
		for x != 0 {
			diffBits += int(x & 1)
			x >>= 1
		}
		totalBits += 8
	}
	return float64(diffBits) / float64(totalBits)
}

// metricAvalancheScore: "Hamming-distance ratio vs input
// with 1 bit flipped, near 0.5 is good".
func metricAvalancheScore(ciphertext, avalancheCiphertext []byte) (score float64, notes string) {
	raw := hammingRatio(ciphertext, avalancheCiphertext)
	return centeredScore(raw), "Hamming ratio between base and single-input-bit-flipped ciphertext"
}

// metricKeyDependency: "Hamming-distance ratio vs key with 1
// bit flipped, near 0.5 is good".
func metricKeyDependency(ciphertext, keyDependencyCiphertext []byte) (score float64, notes string) {
	raw := hammingRatio(ciphertext, keyDependencyCiphertext)
	return centeredScore(raw), "Hamming ratio between base and single-key-bit-flipped ciphertext"
}

// Evaluate runs all nine metrics and
// returns their AnalysisResults in the fixed order of models.AllMetrics.
func Evaluate(ciphertext, avalancheCiphertext, keyDependencyCiphertext, plaintext []byte, mode models.OperationMode) []models.AnalysisResult {
	thresholds := Thresholds()
	results := make([]models.AnalysisResult, 0, len(models.AllMetrics))

	add := func(name models.MetricName, score float64, notes string) {
		th := thresholds[name]
		results = append(results, models.AnalysisResult{
			MetricName: name,
			Score:      round4(score),
			Threshold:  th,
			Passed:     score >= th,
			Notes:      notes,
		})
	}

	s, n := metricEntropy(ciphertext)
	add(models.MetricEntropy, s, n)

	s, n = metricBitVariance(ciphertext)
	add(models.MetricBitVariance, s, n)

	s, n = metricSlidingWindow(ciphertext)
	add(models.MetricSlidingWindow, s, n)

	s, n = metricFrequencyDistribution(ciphertext)
	add(models.MetricFrequencyDistribution, s, n)

	s, n = metricPeriodicityCheck(ciphertext)
	add(models.MetricPeriodicityCheck, s, n)

	s, n = metricMangosCorrelation(plaintext, ciphertext)
	add(models.MetricMangosCorrelation, s, n)

	s, n = metricPositionalMapping(ciphertext)
	add(models.MetricPositionalMapping, s, n)

	s, n = metricAvalancheScore(ciphertext, avalancheCiphertext)
	add(models.MetricAvalancheScore, s, n)

	s, n = metricKeyDependency(ciphertext, keyDependencyCiphertext)
	add(models.MetricKeyDependency, s, n)

	return results
}

func round4(f float64) float64 {
	return math.Round(f*10000) / 10000
}

// Thresholds returns the fixed per-metric pass thresholds. Entropy is
// reported in raw bits/byte (threshold near the 8-bit ceiling); every
// other metric is already rescaled into [0,1] so a single 0.8 bar applies.
func Thresholds() map[models.MetricName]float64 {
	return map[models.MetricName]float64{
		models.MetricEntropy:               7.5,
		models.MetricBitVariance:           0.8,
		models.MetricSlidingWindow:         0.8,
		models.MetricFrequencyDistribution: 0.8,
		models.MetricPeriodicityCheck:      0.8,
		models.MetricMangosCorrelation:     0.8,
		models.MetricPositionalMapping:     0.8,
		models.MetricAvalancheScore:        0.8,
		models.MetricKeyDependency:         0.8,
	}
}
