package pixelfmt

// Channel selects a source for one output component.
type Channel uint8

const (
	ChannelZero Channel = iota
	ChannelOne
	ChannelRed
	ChannelGreen
	ChannelBlue
	ChannelAlpha
)

func (c Channel) String() string {
	switch c {
	case ChannelZero:
		return "Zero"
	case ChannelOne:
		return "One"
	case ChannelRed:
		return "Red"
	case ChannelGreen:
		return "Green"
	case ChannelBlue:
		return "Blue"
	case ChannelAlpha:
		return "Alpha"
	}
	return "Unknown"
}

// IdentitySelector maps every component to itself.
var IdentitySelector = [4]Channel{ChannelRed, ChannelGreen, ChannelBlue, ChannelAlpha}

// ApplyChannelSelector rewrites RGBA8 pixels in place so that output
// component c takes the value named by sel[c]. Unknown selectors keep
// the component unchanged.
func ApplyChannelSelector(pix []byte, sel [4]Channel) {
	if sel == IdentitySelector {
		return
	}
	for i := 0; i+4 <= len(pix); i += 4 {
		src := [4]uint8{pix[i], pix[i+1], pix[i+2], pix[i+3]}
		for c := range 4 {
			switch s := sel[c]; {
			case s == ChannelZero:
				pix[i+c] = 0
			case s == ChannelOne:
				pix[i+c] = 0xFF
			case s <= ChannelAlpha:
				pix[i+c] = src[s-ChannelRed]
			}
		}
	}
}
