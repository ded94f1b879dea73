/*
DESCRIPTION
  lex.go provides a lexer to split a stream of concatenated JPEG images, i.e.
  MJPEG, into individual frames.

AUTHORS
  Dan Kortschak <dan@ausocean.org>
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package mjpeg provides lexing of MJPEG streams into JPEG frames.
package mjpeg

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ausocean/utils/logging"
)

// JPEG markers.
const (
	marker = 0xff
	soi    = 0xd8 // Start of image.
	eoi    = 0xd9 // End of image.
)

// Lex parses JPEG frames read from src into separate writes to dst. Nested
// images, such as embedded thumbnails, stay within their enclosing frame.
// Lex returns nil when src ends between frames and io.ErrUnexpectedEOF when
// it ends within one.
func Lex(dst io.Writer, src io.Reader, l logging.Logger) error {
	r := bufio.NewReader(src)
	for n := 0; ; n++ {
		var start [2]byte
		k, err := io.ReadFull(r, start[:])
		switch {
		case k == 0 && err == io.EOF:
			l.Debug("end of stream", "frames", n)
			return nil
		case err != nil:
			return io.ErrUnexpectedEOF
		case start != [2]byte{marker, soi}:
			return fmt.Errorf("frame %d: not JPEG frame start: %#v", n, start)
		}

		buf := append(make([]byte, 0, 4<<10), start[:]...)
		depth := 1
		var last byte
		for depth > 0 {
			b, err := r.ReadByte()
			if err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			if err != nil {
				return err
			}
			buf = append(buf, b)

			if last == marker {
				switch b {
				case soi:
					depth++
				case eoi:
					depth--
				}
			}
			last = b
		}

		l.Debug("writing frame", "frame", n, "len", len(buf))
		_, err = dst.Write(buf)
		if err != nil {
			return fmt.Errorf("frame %d: %w", n, err)
		}
	}
}
