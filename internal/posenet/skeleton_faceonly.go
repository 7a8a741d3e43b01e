//go:build faceonly

/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package posenet

// Only the face joints are decoded; body joints stay at zero.
var bodyEdges []Edge
