// Package protocol implements the binary wire protocol between a loom
// server and its browser clients.
//
// The server streams the host operations of every commit as a Mutations
// frame and sends a Reset frame carrying the full committed HTML when a
// client connects. Clients send Event frames naming the live node id the
// event was dispatched at.
//
// # Wire Format
//
// All messages are framed with a 5-byte header:
//
//	┌─────────────┬───────────────────────────────┐
//	│ Frame Type  │ Payload Length                │
//	│ (1 byte)    │ (4 bytes, big-endian)         │
//	└─────────────┴───────────────────────────────┘
//
// # Frame Types
//
//   - FrameEvent (0x01): Client → Server events
//   - FrameMutations (0x02): Server → Client host operations
//   - FrameReset (0x03): Server → Client full snapshot
//   - FrameError (0x05): Error message
//
// # Encoding
//
//   - Varint: node ids, counts and sequence numbers (protobuf-style)
//   - ZigZag: signed property values
//   - Length-prefixed: strings
//   - Tagged values: property values carry a one-byte type tag
//
// Decoding failures are reported as E160 errors.
package protocol
