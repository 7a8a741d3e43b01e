//go:build !faceonly

/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package posenet

var bodyEdges = []Edge{
	{Nose, LeftShoulder},
	{LeftShoulder, LeftElbow},
	{LeftElbow, LeftWrist},
	{LeftShoulder, LeftHip},
	{LeftHip, LeftKnee},
	{LeftKnee, LeftAnkle},
	{Nose, RightShoulder},
	{RightShoulder, RightElbow},
	{RightElbow, RightWrist},
	{RightShoulder, RightHip},
	{RightHip, RightKnee},
	{RightKnee, RightAnkle},
}
