package detect

import "github.com/dmgrok/mcp-mother-skills/pkg/stack"

// rule maps one dependency name to a canonical technology.
type rule struct {
	Category stack.Category
	ID       string
	Name     string
}

// packageRules maps well-known dependency names (as they appear in
// manifest files) to technologies. The table is shared by the manifest
// tier and the dependency-graph tier; it is deliberately small and biased
// toward technologies the skill catalog actually covers.
var packageRules = map[string]rule{
	// JavaScript / TypeScript ecosystem
	"react":          {stack.CategoryFramework, "react", "React"},
	"react-dom":      {stack.CategoryFramework, "react", "React"},
	"next":           {stack.CategoryFramework, "nextjs", "Next.js"},
	"vue":            {stack.CategoryFramework, "vue", "Vue.js"},
	"nuxt":           {stack.CategoryFramework, "nuxt", "Nuxt"},
	"@angular/core":  {stack.CategoryFramework, "angular", "Angular"},
	"svelte":         {stack.CategoryFramework, "svelte", "Svelte"},
	"express":        {stack.CategoryFramework, "express", "Express"},
	"fastify":        {stack.CategoryFramework, "fastify", "Fastify"},
	"typescript":     {stack.CategoryLanguage, "typescript", "TypeScript"},
	"prisma":         {stack.CategoryTool, "prisma", "Prisma"},
	"@prisma/client": {stack.CategoryTool, "prisma", "Prisma"},
	"mongoose":       {stack.CategoryDatabase, "mongodb", "MongoDB"},
	"mongodb":        {stack.CategoryDatabase, "mongodb", "MongoDB"},
	"pg":             {stack.CategoryDatabase, "postgresql", "PostgreSQL"},
	"mysql2":         {stack.CategoryDatabase, "mysql", "MySQL"},
	"redis":          {stack.CategoryDatabase, "redis", "Redis"},
	"ioredis":        {stack.CategoryDatabase, "redis", "Redis"},
	"tailwindcss":    {stack.CategoryTool, "tailwindcss", "Tailwind CSS"},
	"jest":           {stack.CategoryTool, "jest", "Jest"},
	"vitest":         {stack.CategoryTool, "vitest", "Vitest"},
	"webpack":        {stack.CategoryTool, "webpack", "webpack"},
	"vite":           {stack.CategoryTool, "vite", "Vite"},
	"eslint":         {stack.CategoryTool, "eslint", "ESLint"},

	// Python ecosystem
	"django":     {stack.CategoryFramework, "django", "Django"},
	"flask":      {stack.CategoryFramework, "flask", "Flask"},
	"fastapi":    {stack.CategoryFramework, "fastapi", "FastAPI"},
	"sqlalchemy": {stack.CategoryDatabase, "sqlalchemy", "SQLAlchemy"},
	"psycopg2":   {stack.CategoryDatabase, "postgresql", "PostgreSQL"},
	"pymongo":    {stack.CategoryDatabase, "mongodb", "MongoDB"},
	"celery":     {stack.CategoryTool, "celery", "Celery"},
	"pytest":     {stack.CategoryTool, "pytest", "pytest"},
	"pandas":     {stack.CategoryTool, "pandas", "pandas"},
	"numpy":      {stack.CategoryTool, "numpy", "NumPy"},

	// Go ecosystem (module path suffixes)
	"github.com/gin-gonic/gin":    {stack.CategoryFramework, "gin", "Gin"},
	"github.com/labstack/echo/v4": {stack.CategoryFramework, "echo", "Echo"},
	"github.com/go-chi/chi/v5":    {stack.CategoryFramework, "chi", "chi"},
	"github.com/gofiber/fiber/v2": {stack.CategoryFramework, "fiber", "Fiber"},
	"gorm.io/gorm":                {stack.CategoryDatabase, "gorm", "GORM"},
	"github.com/jackc/pgx/v5":     {stack.CategoryDatabase, "postgresql", "PostgreSQL"},
	"github.com/redis/go-redis/v9": {stack.CategoryDatabase, "redis", "Redis"},
	"go.mongodb.org/mongo-driver": {stack.CategoryDatabase, "mongodb", "MongoDB"},

	// Rust ecosystem
	"actix-web": {stack.CategoryFramework, "actix", "Actix Web"},
	"axum":      {stack.CategoryFramework, "axum", "Axum"},
	"rocket":    {stack.CategoryFramework, "rocket", "Rocket"},
	"tokio":     {stack.CategoryTool, "tokio", "Tokio"},
	"diesel":    {stack.CategoryDatabase, "diesel", "Diesel"},
	"sqlx":      {stack.CategoryDatabase, "sqlx", "SQLx"},

	// Ruby ecosystem
	"rails":   {stack.CategoryFramework, "rails", "Ruby on Rails"},
	"sinatra": {stack.CategoryFramework, "sinatra", "Sinatra"},
	"sidekiq": {stack.CategoryTool, "sidekiq", "Sidekiq"},

	// PHP ecosystem
	"laravel/framework":  {stack.CategoryFramework, "laravel", "Laravel"},
	"symfony/framework-bundle": {stack.CategoryFramework, "symfony", "Symfony"},

	// Java ecosystem (artifactIds)
	"spring-boot-starter-web": {stack.CategoryFramework, "spring-boot", "Spring Boot"},
	"spring-boot-starter":     {stack.CategoryFramework, "spring-boot", "Spring Boot"},
	"hibernate-core":          {stack.CategoryDatabase, "hibernate", "Hibernate"},
}

// manifestLanguages maps a manifest filename to the language its presence
// implies. Presence-only detections score slightly lower than
// package-level matches.
var manifestLanguages = map[string]rule{
	"package.json":     {stack.CategoryLanguage, "javascript", "JavaScript"},
	"go.mod":           {stack.CategoryLanguage, "go", "Go"},
	"cargo.toml":       {stack.CategoryLanguage, "rust", "Rust"},
	"gemfile":          {stack.CategoryLanguage, "ruby", "Ruby"},
	"composer.json":    {stack.CategoryLanguage, "php", "PHP"},
	"pom.xml":          {stack.CategoryLanguage, "java", "Java"},
	"requirements.txt": {stack.CategoryLanguage, "python", "Python"},
	"pyproject.toml":   {stack.CategoryLanguage, "python", "Python"},
}

// readmeKeywords maps free-text terms to technologies for the
// documentation tier. Mentions are weak evidence.
var readmeKeywords = map[string]rule{
	"react":      {stack.CategoryFramework, "react", "React"},
	"next.js":    {stack.CategoryFramework, "nextjs", "Next.js"},
	"vue":        {stack.CategoryFramework, "vue", "Vue.js"},
	"angular":    {stack.CategoryFramework, "angular", "Angular"},
	"django":     {stack.CategoryFramework, "django", "Django"},
	"flask":      {stack.CategoryFramework, "flask", "Flask"},
	"fastapi":    {stack.CategoryFramework, "fastapi", "FastAPI"},
	"rails":      {stack.CategoryFramework, "rails", "Ruby on Rails"},
	"laravel":    {stack.CategoryFramework, "laravel", "Laravel"},
	"typescript": {stack.CategoryLanguage, "typescript", "TypeScript"},
	"postgresql": {stack.CategoryDatabase, "postgresql", "PostgreSQL"},
	"postgres":   {stack.CategoryDatabase, "postgresql", "PostgreSQL"},
	"mongodb":    {stack.CategoryDatabase, "mongodb", "MongoDB"},
	"redis":      {stack.CategoryDatabase, "redis", "Redis"},
	"mysql":      {stack.CategoryDatabase, "mysql", "MySQL"},
	"docker":     {stack.CategoryInfrastructure, "docker", "Docker"},
	"kubernetes": {stack.CategoryInfrastructure, "kubernetes", "Kubernetes"},
	"terraform":  {stack.CategoryInfrastructure, "terraform", "Terraform"},
	"graphql":    {stack.CategoryTool, "graphql", "GraphQL"},
}

// analyzerLanguages maps language names as reported by the static
// analyzer to technology ids.
var analyzerLanguages = map[string]rule{
	"JavaScript": {stack.CategoryLanguage, "javascript", "JavaScript"},
	"TypeScript": {stack.CategoryLanguage, "typescript", "TypeScript"},
	"Python":     {stack.CategoryLanguage, "python", "Python"},
	"Go":         {stack.CategoryLanguage, "go", "Go"},
	"Rust":       {stack.CategoryLanguage, "rust", "Rust"},
	"Ruby":       {stack.CategoryLanguage, "ruby", "Ruby"},
	"PHP":        {stack.CategoryLanguage, "php", "PHP"},
	"Java":       {stack.CategoryLanguage, "java", "Java"},
	"Kotlin":     {stack.CategoryLanguage, "kotlin", "Kotlin"},
	"Swift":      {stack.CategoryLanguage, "swift", "Swift"},
	"C#":         {stack.CategoryLanguage, "csharp", "C#"},
	"Dockerfile": {stack.CategoryInfrastructure, "docker", "Docker"},
	"HCL":        {stack.CategoryInfrastructure, "terraform", "Terraform"},
	"SQL":        {stack.CategoryDatabase, "sql", "SQL"},
}
