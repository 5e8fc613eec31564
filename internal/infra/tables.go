package infra

// patternKeywords is ordered; the first pattern with a matching phrase wins.
var patternKeywords = []struct {
	pattern Pattern
	phrases []string
}{
	{PatternServerless, []string{"serverless", "lambda", "functions", "faas", "cloud functions", "azure functions"}},
	{PatternMicroservices, []string{"microservice", "microservices", "service mesh", "distributed services"}},
	{PatternThreeTier, []string{"three-tier", "three tier", "3-tier", "web app", "web application", "frontend and backend"}},
	{PatternEventDriven, []string{"event-driven", "event driven", "queue", "kafka", "pub/sub", "pubsub", "streaming", "events"}},
	{PatternContainerBased, []string{"container", "containers", "docker", "kubernetes", "k8s", "ecs", "eks", "aks", "gke"}},
	{PatternMonolithic, []string{"monolith", "monolithic", "single server", "vm", "virtual machine"}},
}

// hybridPhrases signal a multi-cloud target.
var hybridPhrases = []string{
	"hybrid", "multi-cloud", "multi cloud", "multicloud", "multiple clouds", "multiple cloud providers",
	"across clouds", "cloud agnostic", "cloud-agnostic", "aws and azure", "azure and aws",
	"aws and gcp", "gcp and aws", "azure and gcp", "gcp and azure",
}

// providerPhrases is ordered; Analyze takes the first matching provider.
var providerPhrases = []struct {
	env     Environment
	phrases []string
}{
	{EnvAWS, []string{"aws", "amazon", "ec2", "s3", "lambda"}},
	{EnvAzure, []string{"azure", "microsoft"}},
	{EnvGCP, []string{"gcp", "google cloud", "gke", "bigquery"}},
	{EnvOnPremise, []string{"on-premise", "on-prem", "on premise", "datacenter", "data center", "self-hosted", "bare metal"}},
}

// Generic service types.
const (
	svcFunction      = "function"
	svcAPIGateway    = "api_gateway"
	svcNoSQL         = "nosql_database"
	svcRelational    = "relational_database"
	svcObjectStorage = "object_storage"
	svcOrchestration = "container_orchestration"
	svcRegistry      = "container_registry"
	svcQueue         = "message_queue"
	svcEventBus      = "event_bus"
	svcStream        = "stream"
	svcLoadBalancer  = "load_balancer"
	svcCDN           = "cdn"
	svcVM            = "virtual_machine"
	svcCache         = "cache"
	svcServiceMesh   = "service_mesh"
	svcMonitoring    = "monitoring"
	svcNetwork       = "network"
)

// serviceNames maps each generic service type to its provider-specific name.
// Hybrid names are composed from the aws, azure and gcp entries.
var serviceNames = map[string]map[Environment]string{
	svcFunction:      {EnvAWS: "AWS Lambda", EnvAzure: "Azure Functions", EnvGCP: "Google Cloud Functions", EnvOnPremise: "OpenFaaS"},
	svcAPIGateway:    {EnvAWS: "Amazon API Gateway", EnvAzure: "Azure API Management", EnvGCP: "Google API Gateway", EnvOnPremise: "Kong Gateway"},
	svcNoSQL:         {EnvAWS: "Amazon DynamoDB", EnvAzure: "Azure Cosmos DB", EnvGCP: "Google Firestore", EnvOnPremise: "MongoDB"},
	svcRelational:    {EnvAWS: "Amazon RDS", EnvAzure: "Azure SQL Database", EnvGCP: "Google Cloud SQL", EnvOnPremise: "PostgreSQL"},
	svcObjectStorage: {EnvAWS: "Amazon S3", EnvAzure: "Azure Blob Storage", EnvGCP: "Google Cloud Storage", EnvOnPremise: "MinIO"},
	svcOrchestration: {EnvAWS: "Amazon EKS", EnvAzure: "Azure Kubernetes Service", EnvGCP: "Google Kubernetes Engine", EnvOnPremise: "Kubernetes"},
	svcRegistry:      {EnvAWS: "Amazon ECR", EnvAzure: "Azure Container Registry", EnvGCP: "Google Artifact Registry", EnvOnPremise: "Harbor"},
	svcQueue:         {EnvAWS: "Amazon SQS", EnvAzure: "Azure Service Bus", EnvGCP: "Google Cloud Pub/Sub", EnvOnPremise: "RabbitMQ"},
	svcEventBus:      {EnvAWS: "Amazon EventBridge", EnvAzure: "Azure Event Grid", EnvGCP: "Google Eventarc", EnvOnPremise: "NATS"},
	svcStream:        {EnvAWS: "Amazon Kinesis", EnvAzure: "Azure Event Hubs", EnvGCP: "Google Dataflow", EnvOnPremise: "Apache Kafka"},
	svcLoadBalancer:  {EnvAWS: "Elastic Load Balancing", EnvAzure: "Azure Load Balancer", EnvGCP: "Google Cloud Load Balancing", EnvOnPremise: "HAProxy"},
	svcCDN:           {EnvAWS: "Amazon CloudFront", EnvAzure: "Azure Front Door", EnvGCP: "Google Cloud CDN", EnvOnPremise: "Varnish"},
	svcVM:            {EnvAWS: "Amazon EC2", EnvAzure: "Azure Virtual Machines", EnvGCP: "Google Compute Engine", EnvOnPremise: "VMware vSphere"},
	svcCache:         {EnvAWS: "Amazon ElastiCache", EnvAzure: "Azure Cache for Redis", EnvGCP: "Google Memorystore", EnvOnPremise: "Redis"},
	svcServiceMesh:   {EnvAWS: "AWS App Mesh", EnvAzure: "Istio on AKS", EnvGCP: "Google Cloud Service Mesh", EnvOnPremise: "Istio"},
	svcMonitoring:    {EnvAWS: "Amazon CloudWatch", EnvAzure: "Azure Monitor", EnvGCP: "Google Cloud Monitoring", EnvOnPremise: "Prometheus"},
	svcNetwork:       {EnvAWS: "Amazon VPC", EnvAzure: "Azure Virtual Network", EnvGCP: "Google VPC", EnvOnPremise: "VLAN segmentation"},
}

// requirementTemplate is a requirement before environment mapping.
type requirementTemplate struct {
	component   string
	serviceType string
	purpose     string
	priority    string
}

var requirementsByPattern = map[Pattern][]requirementTemplate{
	PatternServerless: {
		{"compute", svcFunction, "Run business logic on demand", PriorityHigh},
		{"api", svcAPIGateway, "Expose HTTP endpoints", PriorityHigh},
		{"database", svcNoSQL, "Persist application data", PriorityHigh},
		{"storage", svcObjectStorage, "Store static assets and uploads", PriorityMedium},
		{"monitoring", svcMonitoring, "Collect logs, metrics and traces", PriorityMedium},
	},
	PatternMicroservices: {
		{"orchestration", svcOrchestration, "Schedule and scale service containers", PriorityHigh},
		{"registry", svcRegistry, "Store service images", PriorityHigh},
		{"api", svcAPIGateway, "Route external traffic to services", PriorityHigh},
		{"database", svcRelational, "Persist per-service data", PriorityHigh},
		{"messaging", svcQueue, "Decouple service-to-service communication", PriorityMedium},
		{"service_mesh", svcServiceMesh, "Secure and observe service traffic", PriorityMedium},
		{"monitoring", svcMonitoring, "Collect logs, metrics and traces", PriorityMedium},
	},
	PatternThreeTier: {
		{"presentation", svcCDN, "Serve the frontend close to users", PriorityMedium},
		{"load_balancer", svcLoadBalancer, "Distribute traffic across app servers", PriorityHigh},
		{"application", svcVM, "Run the application tier", PriorityHigh},
		{"database", svcRelational, "Persist relational data", PriorityHigh},
		{"cache", svcCache, "Cache sessions and hot queries", PriorityMedium},
		{"storage", svcObjectStorage, "Store static assets and backups", PriorityLow},
		{"monitoring", svcMonitoring, "Collect logs, metrics and traces", PriorityMedium},
	},
	PatternEventDriven: {
		{"event_bus", svcEventBus, "Route events between producers and consumers", PriorityHigh},
		{"queue", svcQueue, "Buffer work for asynchronous consumers", PriorityHigh},
		{"stream", svcStream, "Ingest high-volume event streams", PriorityHigh},
		{"processor", svcFunction, "Process events", PriorityHigh},
		{"database", svcNoSQL, "Persist event results", PriorityMedium},
		{"monitoring", svcMonitoring, "Track lag, throughput and failures", PriorityMedium},
	},
	PatternContainerBased: {
		{"orchestration", svcOrchestration, "Run and scale containers", PriorityHigh},
		{"registry", svcRegistry, "Store container images", PriorityHigh},
		{"load_balancer", svcLoadBalancer, "Expose containers to traffic", PriorityHigh},
		{"database", svcRelational, "Persist application data", PriorityMedium},
		{"storage", svcObjectStorage, "Store artifacts and backups", PriorityLow},
		{"monitoring", svcMonitoring, "Collect logs, metrics and traces", PriorityMedium},
	},
	PatternMonolithic: {
		{"compute", svcVM, "Run the application", PriorityHigh},
		{"database", svcRelational, "Persist application data", PriorityHigh},
		{"load_balancer", svcLoadBalancer, "Terminate TLS and route traffic", PriorityMedium},
		{"storage", svcObjectStorage, "Store backups", PriorityLow},
		{"monitoring", svcMonitoring, "Collect logs and metrics", PriorityMedium},
	},
	PatternUnknown: {
		{"compute", svcVM, "Run the workload", PriorityHigh},
		{"network", svcNetwork, "Isolate and connect resources", PriorityMedium},
		{"monitoring", svcMonitoring, "Collect logs and metrics", PriorityMedium},
	},
}

var questionsByPattern = map[Pattern][]Question{
	PatternServerless: {
		{ID: "expected_traffic", Text: "What traffic do you expect?", Category: "scale", Required: true,
			Options: []string{"low", "medium", "high"}, Default: "medium", Priority: PriorityHigh},
		{ID: "runtime", Text: "Which runtime will your functions use?", Category: "technical", Required: true,
			Options: []string{"python", "nodejs", "go", "java"}, Default: "python", Priority: PriorityHigh},
		{ID: "cold_start", Text: "How sensitive are you to cold-start latency?", Category: "performance",
			Options: []string{"tolerant", "latency-sensitive"}, Default: "tolerant", Priority: PriorityMedium},
	},
	PatternMicroservices: {
		{ID: "service_count", Text: "How many services do you plan to run?", Category: "scale", Required: true,
			Options: []string{"2-5", "6-15", "16+"}, Default: "2-5", Priority: PriorityHigh},
		{ID: "communication", Text: "How will services communicate?", Category: "technical", Required: true,
			Options: []string{"rest", "grpc", "async messaging"}, Default: "rest", Priority: PriorityHigh},
		{ID: "deployment_strategy", Text: "Which deployment strategy do you prefer?", Category: "reliability",
			Options: []string{"rolling", "blue-green", "canary"}, Default: "rolling", Priority: PriorityMedium},
	},
	PatternThreeTier: {
		{ID: "expected_users", Text: "How many concurrent users do you expect?", Category: "scale", Required: true,
			Options: []string{"under 1k", "1k-100k", "100k+"}, Default: "1k-100k", Priority: PriorityHigh},
		{ID: "database_engine", Text: "Which database engine do you need?", Category: "technical", Required: true,
			Options: []string{"postgresql", "mysql", "sql server"}, Default: "postgresql", Priority: PriorityHigh},
		{ID: "high_availability", Text: "Do you need the application to survive a zone outage?", Category: "reliability",
			Options: []string{"yes", "no"}, Default: "yes", Priority: PriorityMedium},
	},
	PatternEventDriven: {
		{ID: "event_volume", Text: "What event volume do you expect?", Category: "scale", Required: true,
			Options: []string{"low", "medium", "high"}, Default: "medium", Priority: PriorityHigh},
		{ID: "ordering", Text: "Do events need strict ordering?", Category: "technical", Required: true,
			Options: []string{"strict", "best-effort"}, Default: "best-effort", Priority: PriorityHigh},
		{ID: "retention", Text: "How long should events be retained?", Category: "reliability",
			Options: []string{"1 day", "7 days", "30 days"}, Default: "7 days", Priority: PriorityMedium},
	},
	PatternContainerBased: {
		{ID: "container_count", Text: "How many containers will run at peak?", Category: "scale", Required: true,
			Options: []string{"under 10", "10-50", "50+"}, Default: "10-50", Priority: PriorityHigh},
		{ID: "orchestration", Text: "How do you want containers orchestrated?", Category: "technical", Required: true,
			Options: []string{"managed kubernetes", "serverless containers", "self-managed"}, Default: "managed kubernetes", Priority: PriorityHigh},
		{ID: "autoscaling", Text: "Should the cluster autoscale?", Category: "performance",
			Options: []string{"yes", "no"}, Default: "yes", Priority: PriorityMedium},
	},
	PatternMonolithic: {
		{ID: "instance_size", Text: "What instance size do you need?", Category: "scale", Required: true,
			Options: []string{"small", "medium", "large"}, Default: "medium", Priority: PriorityHigh},
		{ID: "backup_frequency", Text: "How often should backups run?", Category: "reliability",
			Options: []string{"hourly", "daily", "weekly"}, Default: "daily", Priority: PriorityMedium},
	},
	PatternUnknown: {
		{ID: "workload", Text: "What kind of workload are you running (web app, API, data pipeline, batch jobs)?", Category: "technical", Required: true,
			Options: []string{"web app", "api", "data pipeline", "batch jobs"}, Default: "web app", Priority: PriorityHigh},
	},
}

// commonQuestions are appended to every pattern's question set.
var commonQuestions = []Question{
	{ID: "region", Text: "Which region should host the deployment?", Category: "location", Required: true,
		Options: []string{"us-east", "us-west", "eu-west", "ap-southeast"}, Default: "us-east", Priority: PriorityMedium},
	{ID: "data_transfer", Text: "How much data will move in and out each month?", Category: "network",
		Options: []string{"low", "medium", "high"}, Default: "low", Priority: PriorityLow},
	{ID: "compliance", Text: "Which compliance frameworks apply?", Category: "compliance",
		Options: []string{"none", "hipaa", "pci-dss", "soc2", "gdpr"}, Default: "none", Priority: PriorityMedium},
}

var costByPattern = map[Pattern]string{
	PatternServerless:     "$50-500/month",
	PatternMicroservices:  "$500-5,000/month",
	PatternThreeTier:      "$200-2,000/month",
	PatternEventDriven:    "$300-3,000/month",
	PatternContainerBased: "$400-4,000/month",
	PatternMonolithic:     "$100-1,000/month",
	PatternUnknown:        "Cost estimate requires more details",
}

// Cost tiers applied by mutation rules.
const (
	costBudget      = "$20-200/month (budget-optimized)"
	costEnterprise  = "$5,000-50,000/month (enterprise scale)"
	costPerformance = "$2,000-20,000/month (high-performance, multi-region)"
)

var defaultSecurity = []string{
	"Encrypt data at rest and in transit",
	"Grant least-privilege IAM roles",
	"Enable audit logging",
	"Restrict network access with security groups or firewalls",
}

var complianceSecurity = []string{
	"Encrypt data at rest with customer-managed keys",
	"Enforce TLS 1.2 or later for all traffic",
	"Keep immutable audit logs with a defined retention period",
	"Run continuous compliance scanning against the required framework",
	"Isolate regulated data in dedicated accounts or subscriptions",
	"Document data flows for auditors",
}

var enterpriseSecurity = []string{
	"Integrate single sign-on with enforced MFA",
	"Deploy centralized SIEM and threat detection",
	"Use private endpoints for managed services",
	"Enforce policy-as-code guardrails across accounts",
	"Maintain a dedicated security account with break-glass access",
	"Schedule regular penetration tests",
}

var deploymentByPattern = map[Pattern][]string{
	PatternServerless: {
		"Define functions and permissions in Terraform",
		"Deploy through CI/CD with versioned aliases for rollback",
		"Set reserved concurrency on critical functions",
	},
	PatternMicroservices: {
		"Give each service its own pipeline and container image",
		"Use canary or blue-green releases behind the gateway",
		"Adopt distributed tracing before the service count grows",
	},
	PatternThreeTier: {
		"Place app servers in an autoscaling group across zones",
		"Run the database with a standby replica",
		"Automate deployments with immutable images",
	},
	PatternEventDriven: {
		"Configure dead-letter queues for every consumer",
		"Make consumers idempotent",
		"Alert on consumer lag",
	},
	PatternContainerBased: {
		"Manage cluster and workloads with Terraform and Helm",
		"Scan images in the registry before deploy",
		"Set resource requests and limits on every workload",
	},
	PatternMonolithic: {
		"Bake machine images with a repeatable build",
		"Schedule and test database backups",
		"Keep a documented path to split out services later",
	},
	PatternUnknown: {
		"Describe the workload so a concrete architecture can be proposed",
		"Manage every resource with infrastructure as code",
	},
}

// Plan mutation signal groups.
var (
	patternChangePhrases = []string{
		"change to", "switch to", "i want", "instead", "use a", "let's use", "lets use",
		"go with", "make it", "convert to", "move to", "rather",
	}
	budgetPhrases = []string{
		"budget", "cheap", "low cost", "low-cost", "minimal cost", "cost-effective",
		"cost effective", "inexpensive", "save money",
	}
	enterpriseCostPhrases = []string{
		"enterprise", "unlimited budget", "no budget constraint", "large scale", "large-scale",
	}
	compliancePhrases = []string{
		"hipaa", "pci", "soc2", "soc 2", "gdpr", "compliance", "compliant", "regulated",
	}
	enterpriseSecurityPhrases = []string{
		"enterprise security", "enterprise-grade", "zero trust", "zero-trust", "sso",
		"strict security", "maximum security",
	}
	performancePhrases = []string{
		"high performance", "high-performance", "global", "low latency", "low-latency",
		"disaster recovery", "multi-region", "high availability", "99.99",
	}
)

// defaultRegions is the Terraform default region per provider.
var defaultRegions = map[Environment]string{
	EnvAWS:   "us-east-1",
	EnvAzure: "eastus",
	EnvGCP:   "us-east1",
}
