package manifest

// Group headers of the default manifest.
const (
	GroupCore          = "Core dependencies"
	GroupDatabase      = "Database"
	GroupAI            = "LangGraph & AI"
	GroupTesting       = "Testing"
	GroupDocumentation = "Documentation"
)

func minimum(name, v string, extras ...string) Requirement {
	return Requirement{Name: name, Extras: extras, Operator: OpMinimum, Version: v}
}

// Default returns the manifest shipped with every generated project.
func Default() *Manifest {
	m := &Manifest{}
	for _, r := range []Requirement{
		minimum("fastapi", "0.109.0"),
		minimum("uvicorn", "0.27.0", "standard"),
		minimum("pydantic", "2.5.0"),
		minimum("python-dotenv", "1.0.0"),
		minimum("python-docx", "1.1.0"),
	} {
		m.Add(GroupCore, r)
	}
	for _, r := range []Requirement{
		minimum("sqlalchemy", "2.0.25"),
		minimum("alembic", "1.13.1"),
		minimum("psycopg2-binary", "2.9.9"),
	} {
		m.Add(GroupDatabase, r)
	}
	for _, r := range []Requirement{
		{Name: "langgraph", Operator: OpExact, Version: "0.3.30"},
		minimum("langchain", "0.1.0"),
		minimum("langsmith", "0.0.83"),
		minimum("groq", "0.4.2"),
	} {
		m.Add(GroupAI, r)
	}
	for _, r := range []Requirement{
		minimum("pytest", "7.4.4"),
		minimum("pytest-asyncio", "0.23.3"),
		minimum("pytest-cov", "4.1.0"),
		minimum("httpx", "0.26.0"),
	} {
		m.Add(GroupTesting, r)
	}
	for _, r := range []Requirement{
		minimum("mkdocs", "1.5.3"),
		minimum("mkdocs-material", "9.5.3"),
	} {
		m.Add(GroupDocumentation, r)
	}
	return m
}
