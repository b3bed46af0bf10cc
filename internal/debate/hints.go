package debate

import "math/rand/v2"

// DefaultHints is the pool of attack angles, grouped by texture, structure,
// popularity and tone.
func DefaultHints() []string {
	return []string{
		// texture
		"食感（サクサク感、しっとり感、口の中での崩れ方）",
		"チョコとビスケットの比率と口どけ",
		// structure
		"形状と構造（持ちやすさ、折れやすさ、指の汚れにくさ）",
		"箱の中での収まり方と、一粒ずつの食べやすさ",
		// popularity
		"人気と売上（国民総選挙の結果、コンビニでの棚の広さ）",
		"世間のイメージ（子どもと大人、どちらに支持されているか）",
		// tone
		"相手の言葉尻を捉えた揚げ足取り",
		"相手の主張の矛盾を突く皮肉",
	}
}

// HintPicker chooses one hint from a pool. Implementations keep no memory of
// earlier picks, so repeats are allowed.
type HintPicker interface {
	Pick(hints []string) string
}

// HintPickerFunc adapts a function to HintPicker.
type HintPickerFunc func(hints []string) string

// Pick implements HintPicker.
func (f HintPickerFunc) Pick(hints []string) string { return f(hints) }

// RandomPicker picks uniformly at random.
type RandomPicker struct{}

// Pick implements HintPicker.
func (RandomPicker) Pick(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	return hints[rand.IntN(len(hints))]
}
