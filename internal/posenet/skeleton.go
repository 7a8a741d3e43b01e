/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

package posenet

// KeypointName identifies one joint of the skeleton.
type KeypointName uint8

const (
	Nose KeypointName = iota
	LeftEye
	RightEye
	LeftEar
	RightEar
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle
)

// NumKeypoints is the number of joints of every pose.
const NumKeypoints = 17

var keypointNames = [NumKeypoints]string{
	"nose", "left_eye", "right_eye", "left_ear", "right_ear",
	"left_shoulder", "right_shoulder", "left_elbow", "right_elbow",
	"left_wrist", "right_wrist", "left_hip", "right_hip",
	"left_knee", "right_knee", "left_ankle", "right_ankle",
}

func (k KeypointName) String() string {
	if int(k) < NumKeypoints {
		return keypointNames[k]
	}
	return "unknown"
}

// Edge links a parent joint to a child joint. Its position in Edges is
// the displacement channel it reads.
type Edge struct {
	Parent, Child KeypointName
}

var faceEdges = []Edge{
	{Nose, LeftEye},
	{LeftEye, LeftEar},
	{Nose, RightEye},
	{RightEye, RightEar},
}

// Edges is the traversal graph, face edges first.
var Edges = append(append([]Edge{}, faceEdges...), bodyEdges...)

// modelEdges is the number of edges the displacement tensors are trained
// on, whatever subset is traversed.
const modelEdges = 16
