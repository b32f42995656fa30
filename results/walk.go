package results

type WalkMode int

const (
	WalkLtr WalkMode = 0
	WalkRtl WalkMode = 1
)

type WalkerFlags int

const (
	WalkerSkipChildren WalkerFlags = 1 << iota
	WalkerSkipSiblings
	WalkerStop
)

type Visitor func(r *Results) WalkerFlags

// Walk visits r and its descendants in depth-first pre-order.
// Overlays are not visited, only the original children.
func Walk(r *Results, mode WalkMode, visitor Visitor) {
	if r != nil {
		visitNode(r, visitor, (mode&WalkRtl) != 0)
	}
}

func visitNode(r *Results, v Visitor, rtl bool) WalkerFlags {
	flags := v(r)
	if flags&(WalkerSkipChildren|WalkerStop) != 0 {
		return flags
	}

	l := len(r.children)
	for i := 0; i < l; i++ {
		c := r.children[i]
		if rtl {
			c = r.children[l-1-i]
		}
		cf := visitNode(c, v, rtl)
		if cf&WalkerStop != 0 {
			return WalkerStop
		}
		if cf&WalkerSkipSiblings != 0 {
			break
		}
	}
	return flags &^ WalkerSkipChildren
}
