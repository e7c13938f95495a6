// Package address derives the program-owned accounts used by the poll
// program and by the confidential-compute coordinator.
//
// Every address is a pure function of its seed scheme and owning program:
// seeds are hashed together with a bump byte, searched from 255 downwards,
// and the first result that is not a valid curve point is kept.
package address
