package analysis

import (
	"fmt"
	"strings"
	"text/template"

	"gitgrok.app/api/internal/repourl"
)

const reportSystemPrompt = `You are an expert code analyzer and technical architect. You write precise, actionable markdown reports about software repositories.`

var reportTemplate = template.Must(template.New("report").Parse(`Analyze the following GitHub repository and generate a comprehensive, professional report.

Repository Information:
Owner: {{.Owner}}
Repository: {{.Repo}}

Structure Overview:
{{range .Files}}{{.RelPath}}
{{end}}
Detailed Code Analysis:
{{range .Files}}
File: {{.RelPath}}
---
{{.Content}}
---
{{end}}
Generate a detailed markdown report with the following sections:

# {{.Repo}} - Code Analysis Report

## 1. Executive Summary
- High-level overview of the project
- Main purpose and functionality
- Overall code quality assessment
- Key findings and recommendations

## 2. Technical Stack Analysis
### Core Technologies
- Primary programming languages
- Frameworks and libraries
- Database systems (if any)
- External services and APIs

### Development Tools
- Build tools and scripts
- Testing frameworks
- Development dependencies
- DevOps tools

## 3. Architecture Assessment
### Pattern Analysis
- Architectural patterns used
- Design patterns implemented
- Code organization and structure
- Component relationships

### Code Quality Metrics
- Code modularity
- Separation of concerns
- Code reusability
- Error handling patterns

## 4. Best Practices Evaluation
### Coding Standards
- Naming conventions
- Code formatting
- File organization
- Comment quality

### Development Practices
- Testing approach
- Version control usage
- Configuration management
- Environment setup

## 5. Security Analysis
### Security Patterns
- Authentication mechanisms
- Authorization implementation
- Data protection measures
- API security

### Vulnerability Assessment
- Potential security risks
- Dependency vulnerabilities
- Code injection possibilities
- Security best practices compliance

## 6. Performance Optimization
### Current Performance
- Resource usage
- Algorithm efficiency
- Data structure choices
- Caching implementation

### Optimization Opportunities
- Performance bottlenecks
- Optimization suggestions
- Scalability considerations
- Resource management improvements

## 7. Documentation Assessment
### Code Documentation
- Inline documentation quality
- API documentation
- README quality
- Setup instructions

### Project Documentation
- Architecture documentation
- Deployment guides
- Maintenance procedures
- Contributing guidelines

## 8. Recommendations
### Critical Improvements
- High-priority fixes
- Security improvements
- Performance optimizations
- Architecture enhancements

### Future Enhancements
- Scalability suggestions
- Modern technology adoption
- Testing improvements
- Documentation updates

Format Requirements:
1. Use proper markdown headings (# for main sections, ## for subsections)
2. Use bullet points for lists
3. Use code blocks with syntax highlighting where relevant
4. Include relevant code examples for improvements
5. Use tables for comparing options where appropriate
6. Bold important findings and recommendations
7. Include emoji indicators for severity/importance:
   🔴 Critical
   🟡 Important
   🟢 Enhancement
8. Use consistent formatting throughout

Additional Guidelines:
- Be specific and actionable in recommendations
- Provide concrete examples where possible
- Include both positive aspects and areas for improvement
- Focus on practical, implementable solutions
- Prioritize security and performance considerations
{{if not .Files}}
No source files could be sampled from this repository. Base the report on the repository identity alone and say so in the executive summary.
{{end}}`))

type reportData struct {
	Owner string
	Repo  string
	Files []SampledFile
}

// BuildReportPrompt renders the report request for ref over the sampled files.
func BuildReportPrompt(ref repourl.Ref, files []SampledFile) (string, error) {
	var b strings.Builder
	if err := reportTemplate.Execute(&b, reportData{Owner: ref.Owner, Repo: ref.Repo, Files: files}); err != nil {
		return "", fmt.Errorf("rendering report prompt: %w", err)
	}
	return b.String(), nil
}
