package constants

// JobStatus is the canonical status for rows in analysis_job.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusSucceeded JobStatus = "SUCCEEDED"
	JobStatusDegraded  JobStatus = "DEGRADED" // placeholder result from the minimal fallback
	JobStatusFailed    JobStatus = "FAILED"
)

// AnalysisMethod tags which strategy produced a result.
type AnalysisMethod string

const (
	MethodGemini          AnalysisMethod = "gemini_ai"
	MethodEnhancedLocal   AnalysisMethod = "enhanced_local"
	MethodMinimalFallback AnalysisMethod = "minimal_fallback"
)

// StatusForMethod maps the producing strategy to the job status stored with it.
func StatusForMethod(m AnalysisMethod) JobStatus {
	if m == MethodMinimalFallback {
		return JobStatusDegraded
	}
	return JobStatusSucceeded
}
