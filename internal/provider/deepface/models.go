package deepface

// RepresentRequest for POST /represent
type RepresentRequest struct {
	Img              string `json:"img"`               // data URL with base64 JPEG
	ModelName        string `json:"model_name"`        // "Dlib", "Facenet512", "VGG-Face", ...
	DetectorBackend  string `json:"detector_backend"`  // "dlib", "retinaface", "opencv", ...
	EnforceDetection bool   `json:"enforce_detection"` // server answers 400 when no face is found
	Align            bool   `json:"align"`
}

// RepresentResponse from POST /represent
type RepresentResponse struct {
	Results []RepresentResult `json:"results"`
}

type RepresentResult struct {
	Embedding      []float64  `json:"embedding"`
	FacialArea     FacialArea `json:"facial_area"`
	FaceConfidence float64    `json:"face_confidence"`
}

type FacialArea struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// ErrorResponse is the body DeepFace sends with 4xx/5xx answers.
type ErrorResponse struct {
	Error string `json:"error"`
}
