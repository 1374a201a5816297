// Package focus implements the Focus request/reply protocol used to control
// and query Kaleidoscope-powered devices over a serial link.
//
// Focus is a deliberately simple line-oriented text protocol: the host sends
// a space-separated command line terminated by a newline, and the device
// answers with zero or more text lines followed by a lone "." sentinel line
// and link silence. There are no framing headers, checksums, or message IDs;
// end of reply is inferred from a read timeout.
//
// The core type is [Session], which owns a [Transport] exclusively and
// provides the two operations consumers need:
//
//	s, err := focus.NewSession(transport)
//	...
//	_ = s.Flush(ctx)
//	reply, err := s.Request(ctx, "led.mode", "2")
//
// [SerialTransport] implements Transport on top of go.bug.st/serial. Because
// the device firmware has limited UART receive buffering, outbound frames are
// written in small paced chunks; see [WithChunkSize] and [WithWriteDelay].
package focus
