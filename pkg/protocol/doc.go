// ABOUTME: Notecast wire protocol package
// ABOUTME: Defines onset feed messages and the WebSocket client
// Package protocol implements the notecast onset feed protocol.
//
// Messages are JSON objects {"type", "payload"} exchanged over a WebSocket.
// A client sends client/hello, the server answers server/hello and
// stream/start, then pushes note/onset (and note/pitch when requested)
// until stream/end.
//
// Example:
//
//	client := protocol.NewClient(protocol.Config{ServerAddr: "localhost:8928", Name: "wall"})
//	if err := client.Connect(); err != nil {
//		return err
//	}
//	for onset := range client.Onsets {
//		fmt.Println(onset.Name, onset.Octave)
//	}
package protocol
