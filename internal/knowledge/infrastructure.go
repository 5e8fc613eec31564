package knowledge

import (
	"context"
	"sort"
	"strings"

	"github.com/ziadkadry99/infrachat/internal/analyzer"
)

type topic struct {
	name     string
	keywords []string
	content  string
}

var infrastructureTopics = []topic{
	{"docker", []string{"docker", "container", "containers", "image", "dockerfile"},
		"Docker builds images from a Dockerfile and runs them as isolated containers. Keep images small with multi-stage builds, pin base image versions and run as a non-root user."},
	{"kubernetes", []string{"kubernetes", "k8s", "pod", "pods", "helm", "cluster", "kubectl"},
		"Kubernetes schedules pods onto nodes and reconciles them toward the declared state. Use Deployments for stateless workloads, set resource requests and limits, and expose workloads through Services and Ingress."},
	{"terraform", []string{"terraform", "iac", "hcl", "state", "module", "modules"},
		"Terraform keeps infrastructure in declarative HCL. Store state remotely with locking, split reusable pieces into modules and review every plan before apply."},
	{"aws", []string{"aws", "amazon", "ec2", "s3", "lambda", "rds", "dynamodb"},
		"On AWS, isolate workloads in a VPC, use IAM roles instead of long-lived keys, and prefer managed services such as RDS, DynamoDB and Lambda to cut operational load."},
	{"azure", []string{"azure", "aks", "microsoft"},
		"On Azure, organize resources into resource groups, use managed identities for service authentication and Azure Policy to enforce standards across subscriptions."},
	{"gcp", []string{"gcp", "google", "gke", "bigquery"},
		"On Google Cloud, structure projects under folders, use service accounts with workload identity, and lean on GKE Autopilot or Cloud Run for containers."},
	{"serverless", []string{"serverless", "functions", "faas"},
		"Serverless platforms bill per invocation and scale to zero. Keep functions small and stateless, watch cold starts for latency-sensitive paths and push state into managed storage."},
	{"microservices", []string{"microservice", "microservices", "mesh"},
		"Microservices trade deployment independence for operational complexity. Give each service its own data store, version APIs explicitly and invest early in tracing."},
	{"monitoring", []string{"monitoring", "prometheus", "grafana", "metrics", "alerts", "logging", "datadog"},
		"Monitor the four golden signals (latency, traffic, errors, saturation). Alert on symptoms users feel, not on every cause, and keep dashboards per service."},
	{"cicd", []string{"ci", "cd", "pipeline", "pipelines", "jenkins", "github", "gitlab", "argocd"},
		"A CI/CD pipeline should build once, test, scan and promote the same artifact through environments. GitOps tools such as Argo CD reconcile clusters from a repository."},
	{"security", []string{"security", "iam", "encryption", "vault", "tls", "ssl", "compliance"},
		"Apply least privilege everywhere, encrypt data at rest and in transit, manage secrets in a vault rather than in code and log every administrative action."},
	{"networking", []string{"vpc", "dns", "subnet", "firewall", "cdn", "network", "networking", "load-balancer"},
		"Segment networks into public and private subnets, terminate TLS at the load balancer, and restrict east-west traffic with security groups or network policies."},
}

// InfrastructureProvider answers from a static knowledge base of
// infrastructure topics.
type InfrastructureProvider struct {
	keywords []string
}

// NewInfrastructureProvider creates the built-in topic provider.
func NewInfrastructureProvider() *InfrastructureProvider {
	var keywords []string
	for _, t := range infrastructureTopics {
		keywords = append(keywords, t.keywords...)
	}
	return &InfrastructureProvider{keywords: keywords}
}

func (p *InfrastructureProvider) Name() string { return "infrastructure_knowledge" }

func (p *InfrastructureProvider) Capability() Capability {
	return Capability{Name: "infrastructure_knowledge", Keywords: p.keywords, Threshold: 0.3}
}

func (p *InfrastructureProvider) CanHandle(a analyzer.Analysis) float64 {
	best := 0.0
	for _, t := range infrastructureTopics {
		best = max(best, KeywordConfidence(t.keywords, a))
	}
	return best
}

// GetKnowledge returns up to two matching topics, best match first.
func (p *InfrastructureProvider) GetKnowledge(_ context.Context, a analyzer.Analysis) (Response, error) {
	type scored struct {
		topic topic
		conf  float64
	}
	var matches []scored
	for _, t := range infrastructureTopics {
		if c := KeywordConfidence(t.keywords, a); c > 0 {
			matches = append(matches, scored{t, c})
		}
	}
	if len(matches) == 0 {
		return Response{Success: false, Source: p.Name()}, nil
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].conf > matches[j].conf })
	if len(matches) > 2 {
		matches = matches[:2]
	}

	var parts, names []string
	for _, m := range matches {
		parts = append(parts, m.topic.content)
		names = append(names, m.topic.name)
	}
	return Response{
		Success:    true,
		Content:    strings.Join(parts, "\n\n"),
		Confidence: matches[0].conf,
		Source:     p.Name(),
		Extra:      map[string]any{"topics": names},
	}, nil
}
