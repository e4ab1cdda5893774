package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// BV ids are a base-58 obfuscation of the numeric aid. The constants and
// the shuffle tables below are fixed by the upstream scheme.
const (
	bvPrefix = "BV1"
	bvLength = 12

	xorCode  = 23442827791579
	maskCode = 2251799813685247
	maxAid   = 1 << 51

	alphabet = "FcwAPNKTMug3GV5Lj7EJnHpWsx4tb8haYeviqBz6rkCy12mUSDQX9RdoZf"
	base     = int64(len(alphabet))
)

var (
	encodeShuffle = [9]int{8, 7, 0, 5, 1, 3, 2, 4, 6}
	decodeShuffle = [9]int{6, 4, 2, 3, 1, 5, 0, 7, 8}
)

// EncodeBVid converts an aid into the BV id naming the same video.
func EncodeBVid(aid int64) string {
	var code [9]byte
	tmp := (maxAid | aid) ^ xorCode
	for _, pos := range encodeShuffle {
		code[pos] = alphabet[tmp%base]
		tmp /= base
	}
	return bvPrefix + string(code[:])
}

// DecodeBVid converts a BV id back into its aid.
func DecodeBVid(bvid string) (int64, error) {
	if len(bvid) != bvLength || !strings.EqualFold(bvid[:2], "BV") || bvid[2] != '1' {
		return 0, fmt.Errorf("malformed BV id %q", bvid)
	}
	var tmp int64
	for _, pos := range decodeShuffle {
		idx := strings.IndexByte(alphabet, bvid[3+pos])
		if idx < 0 {
			return 0, fmt.Errorf("malformed BV id %q", bvid)
		}
		tmp = tmp*base + int64(idx)
	}
	aid := (tmp & maskCode) ^ xorCode
	if aid <= 0 || aid >= maxAid {
		return 0, fmt.Errorf("malformed BV id %q", bvid)
	}
	return aid, nil
}

// ParseVideoID resolves the user-facing video identifier into an aid. It
// accepts a BV id ("BV1xx411c7mD"), an av number ("av170001"), or bare aid
// digits ("170001").
func ParseVideoID(raw string) (int64, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return 0, fmt.Errorf("empty video id")
	}

	if len(id) >= 2 && strings.EqualFold(id[:2], "BV") {
		return DecodeBVid(id)
	}

	if len(id) > 2 && strings.EqualFold(id[:2], "av") {
		id = id[2:]
	}
	aid, err := strconv.ParseInt(id, 10, 64)
	if err != nil || aid <= 0 {
		return 0, fmt.Errorf("video id %q is not a BV id, an av number, or an aid", raw)
	}
	return aid, nil
}
