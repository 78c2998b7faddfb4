package capture

import (
	"bytes"
	"testing"

	"gocv.io/x/gocv"
)

func TestMirror(t *testing.T) {
	mat := gocv.NewMatWithSize(2, 3, gocv.MatTypeCV8UC1)
	defer mat.Close()
	mat.SetUCharAt(0, 0, 200)

	Mirror(&mat)

	if got := mat.GetUCharAt(0, 2); got != 200 {
		t.Errorf("mirrored pixel = %d, want 200", got)
	}
	if got := mat.GetUCharAt(0, 0); got != 0 {
		t.Errorf("left pixel = %d, want 0", got)
	}
}

func TestEncodeJPEG(t *testing.T) {
	frame := Blank(DefaultWidth, DefaultHeight)
	defer frame.Close()

	data, err := EncodeJPEG(frame)
	if err != nil {
		t.Fatalf("EncodeJPEG() error = %v", err)
	}
	if !bytes.HasPrefix(data, []byte{0xff, 0xd8}) {
		t.Errorf("EncodeJPEG() output does not start with a JPEG marker")
	}
}
