package ids

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	PrefixTree      = "T"
	PrefixRock      = "R"
	PrefixStructure = "S"
)

// Seq formats a sequence id such as "T0007".
func Seq(prefix string, n uint64) string {
	return fmt.Sprintf("%s%04d", prefix, n)
}

func ParseSeq(id string) (prefix string, n uint64, ok bool) {
	i := strings.IndexFunc(id, func(r rune) bool { return r >= '0' && r <= '9' })
	if i <= 0 {
		return "", 0, false
	}
	v, err := strconv.ParseUint(id[i:], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return id[:i], v, true
}
