package patterns

import (
	"context"
	"fmt"

	"github.com/ziadkadry99/infrachat/internal/progress"
)

// Catalog is the built-in pattern set loaded at startup.
var Catalog = []Pattern{
	{Category: "greeting", Keywords: "hi hello hey", Confidence: 95,
		Template: "Hello! I can help you design, provision and troubleshoot cloud infrastructure. What are you working on?"},
	{Category: "greeting", Keywords: "good morning afternoon evening", Confidence: 90,
		Template: "Good to see you. Tell me about the infrastructure you want to build or the problem you are chasing."},
	{Category: "capabilities", Keywords: "what can you do", Confidence: 95,
		Template: "I can turn an infrastructure request into a plan (serverless, microservices, three-tier, event-driven, containers or a monolith), walk you through the open requirements, estimate cost, generate Terraform and answer questions about Docker, Kubernetes, Terraform and the major clouds."},
	{Category: "capabilities", Keywords: "capabilities support features", Confidence: 85,
		Template: "Supported today: plan analysis for AWS, Azure, GCP, on-premise and hybrid targets, guided requirements collection, Terraform skeleton generation and a knowledge base of infrastructure topics."},
	{Category: "help", Keywords: "help need assistance", Confidence: 85,
		Template: "Sure. Describe what you want to build, for example \"create a serverless API on AWS\", or ask about a specific tool."},
	{Category: "troubleshooting", Keywords: "error failed not working broken", Confidence: 80,
		Template: "Let's narrow it down. Which component is failing, what changed recently, and what does the error output say?"},
	{Category: "troubleshooting", Keywords: "container docker crash restart", Confidence: 80,
		Template: "For a crashing container, check `docker logs <container>` and the exit code from `docker inspect`. Restart loops usually come from a failing entrypoint, a missing environment variable or a health check that never passes."},
	{Category: "troubleshooting", Keywords: "pod pods kubernetes crashloopbackoff pending", Confidence: 80,
		Template: "Start with `kubectl describe pod <name>` for scheduling and image events, then `kubectl logs <name> --previous` for the last crash."},
	{Category: "information", Keywords: "docker container image", Confidence: 75,
		Template: "Docker packages an application and its dependencies into an image that runs as an isolated container on any host with a container runtime."},
	{Category: "information", Keywords: "kubernetes k8s orchestration cluster", Confidence: 75,
		Template: "Kubernetes schedules containers across a cluster, restarts failed workloads, scales replicas and routes traffic through services and ingresses."},
	{Category: "information", Keywords: "terraform iac infrastructure code", Confidence: 75,
		Template: "Terraform describes infrastructure declaratively in HCL, computes a plan against recorded state and applies only the differences."},
	{Category: "commands", Keywords: "install docker", Confidence: 70,
		Template: "On Linux, install Docker Engine from the official repository (`curl -fsSL https://get.docker.com | sh`), then add your user to the docker group."},
	{Category: "commands", Keywords: "deploy kubernetes kubectl apply", Confidence: 70,
		Template: "Deploy manifests with `kubectl apply -f <dir>` and follow the rollout with `kubectl rollout status deployment/<name>`."},
	{Category: "social", Keywords: "thanks thank appreciate", Confidence: 90,
		Template: "You're welcome! Anything else I can help you with?"},
	{Category: "clarification", Keywords: "mean clarify elaborate", Confidence: 70,
		Template: "Happy to clarify. Which part should I expand on?"},
	{Category: "conversation", Keywords: "how are you going", Confidence: 80,
		Template: "Doing well and ready to build. What's on your infrastructure list today?"},
	{Category: "personal", Keywords: "who are you name", Confidence: 80,
		Template: "I'm infrachat, a rule-based assistant for planning and operating cloud infrastructure."},
}

// Seed upserts the built-in catalog into store, reporting progress per
// pattern. It returns the number of patterns written.
func Seed(ctx context.Context, store *Store, reporter progress.Reporter) (int, error) {
	reporter.Start(len(Catalog))
	defer reporter.Finish()

	for i, p := range Catalog {
		if _, err := store.AddPattern(ctx, p); err != nil {
			return i, fmt.Errorf("seeding %s pattern %q: %w", p.Category, p.Keywords, err)
		}
		reporter.Update(i+1, p.Category)
	}
	return len(Catalog), nil
}
