package similarity

const (
	winklerPrefixLimit  = 4
	winklerPrefixWeight = 0.1
)

// Jaro returns the Jaro similarity of two strings in [0,1]. Identical
// strings score 1; if either (but not both) is empty the score is 0.
func Jaro(a, b string) float64 {
	if a == b {
		return 1
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	window := len(ra)
	if len(rb) > window {
		window = len(rb)
	}
	window = window/2 - 1
	if window < 0 {
		window = 0
	}

	aMatched := make([]bool, len(ra))
	bMatched := make([]bool, len(rb))
	matches := 0
	for i, r := range ra {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		hi := i + window
		if hi > len(rb)-1 {
			hi = len(rb) - 1
		}
		for j := lo; j <= hi; j++ {
			if bMatched[j] || rb[j] != r {
				continue
			}
			aMatched[i] = true
			bMatched[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	// Count matched characters that appear in a different order; each swap
	// involves two characters, so halve the mismatch count.
	outOfOrder := 0
	j := 0
	for i, r := range ra {
		if !aMatched[i] {
			continue
		}
		for !bMatched[j] {
			j++
		}
		if r != rb[j] {
			outOfOrder++
		}
		j++
	}

	m := float64(matches)
	t := float64(outOfOrder) / 2
	return (m/float64(len(ra)) + m/float64(len(rb)) + (m-t)/m) / 3
}

// JaroWinkler boosts the Jaro score for strings sharing a common prefix of
// up to four characters, weighted at 0.1 per character scaled by 1-jaro.
func JaroWinkler(a, b string) float64 {
	j := Jaro(a, b)
	if j == 0 || j == 1 {
		return j
	}

	ra, rb := []rune(a), []rune(b)
	prefix := 0
	for prefix < winklerPrefixLimit && prefix < len(ra) && prefix < len(rb) && ra[prefix] == rb[prefix] {
		prefix++
	}
	return j + float64(prefix)*winklerPrefixWeight*(1-j)
}
