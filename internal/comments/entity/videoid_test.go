package entity

import "testing"

func TestEncodeBVid(t *testing.T) {
	tests := []struct {
		aid  int64
		want string
	}{
		{aid: 2, want: "BV1xx411c7mD"},
		{aid: 170001, want: "BV17x411w7KC"},
		{aid: 111298867365120, want: "BV1L9Uoa9EUx"},
	}

	for _, tc := range tests {
		if got := EncodeBVid(tc.aid); got != tc.want {
			t.Errorf("EncodeBVid(%d) = %q, want %q", tc.aid, got, tc.want)
		}
	}
}

func TestDecodeBVid(t *testing.T) {
	tests := []struct {
		bvid string
		want int64
	}{
		{bvid: "BV1xx411c7mD", want: 2},
		{bvid: "BV17x411w7KC", want: 170001},
		{bvid: "BV1L9Uoa9EUx", want: 111298867365120},
	}

	for _, tc := range tests {
		got, err := DecodeBVid(tc.bvid)
		if err != nil {
			t.Fatalf("DecodeBVid(%q) returned error: %v", tc.bvid, err)
		}
		if got != tc.want {
			t.Errorf("DecodeBVid(%q) = %d, want %d", tc.bvid, got, tc.want)
		}
	}
}

func TestDecodeBVidRoundTrip(t *testing.T) {
	for _, aid := range []int64{1, 2, 99999, 170001, 1755412, 111298867365120} {
		got, err := DecodeBVid(EncodeBVid(aid))
		if err != nil {
			t.Fatalf("round trip of aid %d returned error: %v", aid, err)
		}
		if got != aid {
			t.Errorf("round trip of aid %d = %d", aid, got)
		}
	}
}

func TestDecodeBVidRejectsMalformed(t *testing.T) {
	for _, bvid := range []string{"", "BV1", "BV1xx411c7m", "BV1xx411c7mDD", "AV1xx411c7mD", "BV2xx411c7mD", "BV1xx411c7m0"} {
		if _, err := DecodeBVid(bvid); err == nil {
			t.Errorf("DecodeBVid(%q) returned no error", bvid)
		}
	}
}

func TestParseVideoID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int64
	}{
		{name: "bv id", in: "BV1xx411c7mD", want: 2},
		{name: "lowercase bv prefix", in: "bv1xx411c7mD", want: 2},
		{name: "av number", in: "av170001", want: 170001},
		{name: "uppercase av prefix", in: "AV170001", want: 170001},
		{name: "bare aid", in: "170001", want: 170001},
		{name: "surrounding spaces", in: "  av170001 ", want: 170001},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseVideoID(tc.in)
			if err != nil {
				t.Fatalf("ParseVideoID(%q) returned error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Errorf("ParseVideoID(%q) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestParseVideoIDRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "   ", "av", "avxyz", "av-1", "0", "-5", "video", "BVshort"} {
		if _, err := ParseVideoID(in); err == nil {
			t.Errorf("ParseVideoID(%q) returned no error", in)
		}
	}
}
