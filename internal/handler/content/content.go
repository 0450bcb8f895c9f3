// Package content serves the static clinic pages: the therapy platform
// overview and the department browser.
package content

const (
	TabMethods    = "methods"
	TabTechnology = "technology"
)

type TherapyMethod struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Benefits    []string `json:"benefits"`
}

type TechFeature struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Department struct {
	ID         int      `json:"id"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Highlights []string `json:"highlights"`
}

var TherapyMethods = []TherapyMethod{
	{
		ID:          "cbt",
		Name:        "Cognitive Behavioral Therapy (CBT)",
		Description: "A structured, goal-oriented psychotherapy that addresses negative thought patterns to change unwanted behavior patterns.",
		Benefits:    []string{"Effective for anxiety/depression", "Short-term focused", "Skill-building approach"},
	},
	{
		ID:          "emdr",
		Name:        "EMDR",
		Description: "Eye Movement Desensitization and Reprocessing therapy helps process traumatic memories through bilateral stimulation.",
		Benefits:    []string{"Trauma treatment", "Memory processing", "Somatic integration"},
	},
	{
		ID:          "somatic",
		Name:        "Somatic Therapy",
		Description: "Focuses on bodily sensations to release trauma stored in the body and regulate the nervous system.",
		Benefits:    []string{"Body awareness", "Trauma release", "Nervous system regulation"},
	},
	{
		ID:          "mindfulness",
		Name:        "Mindfulness-Based",
		Description: "Incorporates meditation practices to develop present-moment awareness and reduce reactivity.",
		Benefits:    []string{"Stress reduction", "Emotional regulation", "Present-focused"},
	},
}

var TechFeatures = []TechFeature{
	{Name: "Telehealth Integration", Description: "Secure video sessions with screen sharing and virtual whiteboard capabilities."},
	{Name: "AI Progress Analytics", Description: "Machine learning tracks treatment progress and suggests protocol adjustments."},
	{Name: "Digital Journaling", Description: "Client journal with sentiment analysis and pattern detection."},
	{Name: "VR Exposure Therapy", Description: "Virtual reality environments for controlled exposure scenarios."},
}

var departmentHighlights = []string{
	"Qualified Doctors",
	"24x7 Emergency Services",
	"General Medical",
	"Feel like Home Services",
}

var Departments = []Department{
	{ID: 1, Title: "1. Speciality Rhinology", Content: "Diagnosis and treatment of nasal and sinus conditions, from chronic sinusitis to airway surgery.", Highlights: departmentHighlights},
	{ID: 2, Title: "2. Cardiology Care", Content: "Heart health assessments, monitoring and long-term care plans for cardiovascular conditions.", Highlights: departmentHighlights},
	{ID: 3, Title: "3. Neurology Experts", Content: "Evaluation and management of disorders of the brain, spine and peripheral nerves.", Highlights: departmentHighlights},
	{ID: 4, Title: "4. Neurology Experts", Content: "Follow-up neurological care, rehabilitation planning and specialist referrals.", Highlights: departmentHighlights},
	{ID: 5, Title: "5. Speciality Experts", Content: "Consultations with visiting specialists across the clinic's partner network.", Highlights: departmentHighlights},
}

// SelectTab returns tab if it is known, else the methods tab.
func SelectTab(tab string) string {
	if tab == TabTechnology {
		return TabTechnology
	}
	return TabMethods
}

// ToggleMethod returns the method selected after clicking clicked while
// current is selected. Clicking the selected method clears the selection;
// unknown ids select nothing.
func ToggleMethod(current, clicked string) string {
	if clicked == "" || clicked == current {
		return ""
	}
	for _, m := range TherapyMethods {
		if m.ID == clicked {
			return clicked
		}
	}
	return ""
}

// SelectDepartment returns the department with id, or the first one.
func SelectDepartment(id int) Department {
	for _, d := range Departments {
		if d.ID == id {
			return d
		}
	}
	return Departments[0]
}
