package encode

import "fmt"

// EncoderError reports which pipeline stage failed. Only the palette and
// encode stages run ffmpeg.
type EncoderError struct {
	Stage string
	Err   error
}

func (e *EncoderError) Error() string {
	if e.Stage == StageVerifyPalette {
		return fmt.Sprintf("palette check failed (%s stage): %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("error using ffmpeg (%s stage): %v", e.Stage, e.Err)
}

func (e *EncoderError) Unwrap() error {
	return e.Err
}
