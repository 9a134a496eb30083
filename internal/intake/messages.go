package intake

import (
	"fmt"
	"strings"
)

// Link is a job board search for a role.
type Link struct {
	Site string
	URL  string
}

// FallbackLinks returns the four job boards offered when no volunteer
// answers. Spaces in role become '+'.
func FallbackLinks(role string) []Link {
	q := strings.ReplaceAll(role, " ", "+")
	return []Link{
		{Site: "Internshala", URL: "https://internshala.com/internships/" + q + "-internship"},
		{Site: "LinkedIn", URL: "https://www.linkedin.com/jobs/search/?keywords=" + q},
		{Site: "Indeed", URL: "https://in.indeed.com/jobs?q=" + q},
		{Site: "LetsIntern", URL: "https://www.letsintern.com/" + q + "-internships"},
	}
}

func intentPrompt(mention string) string {
	return fmt.Sprintf("👋 %s, would you like to apply for an **internship** or a **job**?\nPlease reply with `internship` or `job`.", mention)
}

func resumePrompt(mention string, direct bool, timeoutSec int) string {
	if direct {
		return fmt.Sprintf("👋 %s, please upload your **resume** (PDF, DOCX, or image), **or** type your preferred role (e.g., Web Developer, AI Engineer).", mention)
	}
	return fmt.Sprintf("📄 Great! Please upload your resume as a file (PDF, DOCX, or image), or type your preferred **job role** (e.g., Web Developer, Data Analyst).\nYou have %d seconds...", timeoutSec)
}

func noIntentNotice(mention string) string {
	return fmt.Sprintf("⌛ %s, you didn’t reply. If you’re interested in jobs or internships, just type it anytime!", mention)
}

func noRoleNotice(mention string, direct bool) string {
	if direct {
		return "⌛ Time's up! No resume or role received."
	}
	return fmt.Sprintf("⌛ %s, no resume or role was received in time. You can try again later!", mention)
}

const (
	emptyResumeNotice = "⚠️ Could not extract text from the resume."
	unsupportedNotice = "⚠️ Only .pdf, .docx, or image files are supported."
)

func roleSelected(role, intent string) string {
	return fmt.Sprintf("🎯 Role selected: **%s**\n📢 Let me check with alumni for a %s in this role...", role, intent)
}

func volunteerBroadcast(name, intent, role string) string {
	return fmt.Sprintf("📢 %s is looking for a **%s** opportunity as a **%s**.\nPlease respond here if you can help or refer!", name, intent, role)
}

func relay(mention, volunteer, reply string) string {
	return fmt.Sprintf("📬 %s, alumni **%s** replied:\n> %s", mention, volunteer, reply)
}

func fallback(mention, role, intent string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🕐 %s, no alumni has responded yet.\n\n", mention)
	fmt.Fprintf(&b, "Here are some great resources for finding **%s %ss**:\n\n", role, intent)
	for _, l := range FallbackLinks(role) {
		fmt.Fprintf(&b, "🔗 [%s - %s](%s)\n", l.Site, role, l.URL)
	}
	b.WriteString("\nGood luck! 🚀💼")
	return b.String()
}

func rolePrompt(resume string) string {
	return "From the resume text below, list only the **single most suitable job role** for this user. " +
		"Return just the role name, no extra explanation.\n\n" +
		"Resume:\n" + resume
}
