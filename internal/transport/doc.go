// Package transport moves protocol frames over the sensor's serial link.
//
// The sensor speaks 9600 baud, 8 data bits, no parity, one stop bit. A Conn
// writes one 9-byte request and reads back one complete 9-byte frame, enforcing
// a read deadline because the sensor may not answer at all. Frames are returned
// as raw bytes; validating and decoding them is the protocol package's job.
//
// Reading resynchronizes on the 0xFF start marker: any bytes before it (line
// noise, the tail of an earlier reply) are discarded. There are no retries;
// callers decide what to do with ErrTimeout.
package transport
