package midimind

import (
	"bytes"
	"testing"
)

func TestAssembler(t *testing.T) {
	type fragment struct {
		data []byte
		end  bool
	}

	tests := []struct {
		name     string
		size     int
		input    []fragment
		expected [][]byte
	}{
		{
			"SingleFragment",
			0,
			[]fragment{{[]byte{0xF0, 0x7D, 0xF7}, true}},
			[][]byte{{0xF0, 0x7D, 0xF7}},
		},
		{
			"Request",
			0,
			[]fragment{
				{[]byte{0xF0, 0x7D, 0x00}, false},
				{[]byte{0x01, 0x00, 0xF7}, true},
			},
			[][]byte{{0xF0, 0x7D, 0x00, 0x01, 0x00, 0xF7}},
		},
		{
			"EndWithOneByte",
			0,
			[]fragment{
				{[]byte{0xF0, 0x7D, 0x00}, false},
				{[]byte{0x01, 0x00, 0x00}, false},
				{[]byte{0xF7}, true},
			},
			[][]byte{{0xF0, 0x7D, 0x00, 0x01, 0x00, 0x00, 0xF7}},
		},
		{
			"ContinuationWithoutStartIgnored",
			0,
			[]fragment{
				{[]byte{0x01, 0x02, 0x03}, false},
				{[]byte{0x04, 0xF7}, true},
			},
			nil,
		},
		{
			"NewStartDiscardsPartial",
			0,
			[]fragment{
				{[]byte{0xF0, 0x01, 0x02}, false},
				{[]byte{0xF0, 0x7D, 0x00}, false},
				{[]byte{0x02, 0x00, 0xF7}, true},
			},
			[][]byte{{0xF0, 0x7D, 0x00, 0x02, 0x00, 0xF7}},
		},
		{
			"OverflowDiscarded",
			6,
			[]fragment{
				{[]byte{0xF0, 0x01, 0x02}, false},
				{[]byte{0x03, 0x04, 0x05}, false},
				{[]byte{0x06, 0xF7}, true},
			},
			nil,
		},
		{
			"RecoversAfterOverflow",
			6,
			[]fragment{
				{[]byte{0xF0, 0x01, 0x02}, false},
				{[]byte{0x03, 0x04, 0x05}, false},
				{[]byte{0x06, 0xF7}, true},
				{[]byte{0xF0, 0x7D, 0xF7}, true},
			},
			[][]byte{{0xF0, 0x7D, 0xF7}},
		},
		{
			"ExactlyFull",
			6,
			[]fragment{
				{[]byte{0xF0, 0x7D, 0x00}, false},
				{[]byte{0x01, 0x00, 0xF7}, true},
			},
			[][]byte{{0xF0, 0x7D, 0x00, 0x01, 0x00, 0xF7}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAssembler(tt.size)

			var got [][]byte
			for _, f := range tt.input {
				msg, ok := a.Write(f.data, f.end)
				if ok {
					got = append(got, bytes.Clone(msg))
				}
			}

			if len(got) != len(tt.expected) {
				t.Fatalf("expected %d messages, got %d: % X", len(tt.expected), len(got), got)
			}
			for i := range got {
				if !bytes.Equal(got[i], tt.expected[i]) {
					t.Errorf("message %d: expected=% X, got=% X", i, tt.expected[i], got[i])
				}
			}
			if a.Active() {
				t.Errorf("expected assembler to be idle")
			}
		})
	}
}

func TestAssemblerDefaultSize(t *testing.T) {
	a := NewAssembler(0)

	msg := make([]byte, DefaultBufferSize)
	msg[0] = 0xF0
	msg[len(msg)-1] = 0xF7
	if _, ok := a.Write(msg, true); !ok {
		t.Errorf("expected a %d byte message to fit", DefaultBufferSize)
	}

	msg = append(msg, 0xF7)
	if _, ok := a.Write(msg, true); ok {
		t.Errorf("expected a %d byte message to be dropped", len(msg))
	}
}
