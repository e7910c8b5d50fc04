package game

const (
	ErrorMissingCollisionShape = "Error: Actor has no half-extents and no mesh bounds to derive them from."
	ErrorBodyCreation          = "Error: External engine rejected body creation: %v."
	ErrorSubstepAborted        = "Error: Substep aborted, keeping previous positions."
	ErrorStuckBailout          = "Actor stuck without progress, treating as grounded."
)
