// ABOUTME: Audio decoder package for file analysis
// ABOUTME: Provides streaming decoders for WAV, FLAC and MP3
// Package decode turns encoded audio into interleaved int32 samples in the
// 24-bit range used throughout notecast.
//
// A Stream pulls samples from a reader until io.EOF and reports its Format.
// Streams never loop: analysis of a file ends with the file. PCMDecoder
// converts the raw little-endian bytes some codecs produce.
//
// Example:
//
//	s, err := decode.Open("melody.flac")
//	if err != nil {
//		return err
//	}
//	defer s.Close()
//	buf := make([]int32, 4096)
//	n, err := s.Read(buf)
package decode
