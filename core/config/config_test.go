package config_test

import (
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/QuackbackIO/quackback-sub007/core/config"
)

var _ = Describe("Load", func() {
	setEnv := func(key, value string) {
		prev, had := os.LookupEnv(key)
		Expect(os.Setenv(key, value)).To(Succeed())
		DeferCleanup(func() {
			if had {
				_ = os.Setenv(key, prev)
			} else {
				_ = os.Unsetenv(key)
			}
		})
	}

	BeforeEach(func() {
		// Skip .env loading so the host environment cannot leak in.
		setEnv("INTAKE_ENV", "test")
	})

	It("applies pipeline defaults for the server", func() {
		cfg, err := config.Load(config.ServiceTypeServer)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Gate.MinWordCount).To(Equal(5))
		Expect(cfg.Matcher.SimilarityThreshold).To(BeNumerically("==", 0.80))
		Expect(cfg.Worker.MaxAttempts).To(Equal(3))
		Expect(cfg.Capabilities.CallTimeout).To(Equal(30 * time.Second))
	})

	It("reads threshold overrides", func() {
		setEnv("GATE_MIN_WORD_COUNT", "3")
		setEnv("MATCHER_SIMILARITY_THRESHOLD", "0.9")
		setEnv("CAPABILITY_CALL_TIMEOUT", "5s")

		cfg, err := config.Load(config.ServiceTypeServer)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Gate.MinWordCount).To(Equal(3))
		Expect(cfg.Matcher.SimilarityThreshold).To(BeNumerically("==", 0.9))
		Expect(cfg.Capabilities.CallTimeout).To(Equal(5 * time.Second))
	})

	It("rejects an out of range similarity threshold", func() {
		setEnv("MATCHER_SIMILARITY_THRESHOLD", "1.5")

		_, err := config.Load(config.ServiceTypeServer)
		Expect(err).To(MatchError(ContainSubstring("MATCHER_SIMILARITY_THRESHOLD")))
	})

	It("rejects a candidate limit that would select no posts", func() {
		setEnv("MATCHER_CANDIDATE_LIMIT", "0")

		_, err := config.Load(config.ServiceTypeServer)
		Expect(err).To(MatchError(ContainSubstring("MATCHER_CANDIDATE_LIMIT")))
	})

	It("rejects embedding dimensions that do not fit the vector columns", func() {
		setEnv("EMBEDDING_DIMENSIONS", "768")

		_, err := config.Load(config.ServiceTypeServer)
		Expect(err).To(MatchError(ContainSubstring("EMBEDDING_DIMENSIONS")))
	})

	It("defaults the ready item sweep", func() {
		cfg, err := config.Load(config.ServiceTypeServer)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Embedding.Dimensions).To(Equal(config.EmbeddingDimensions))
		Expect(cfg.Worker.SweepInterval).To(Equal(time.Minute))
		Expect(cfg.Worker.SweepStaleAfter).To(Equal(10 * time.Minute))
		Expect(cfg.Worker.SweepBatchSize).To(Equal(int32(100)))
	})

	It("rejects an enabled sweep without a stale window", func() {
		setEnv("WORKER_SWEEP_STALE_AFTER", "0s")

		_, err := config.Load(config.ServiceTypeServer)
		Expect(err).To(MatchError(ContainSubstring("WORKER_SWEEP_STALE_AFTER")))
	})

	It("requires model credentials for the worker", func() {
		setEnv("CLASSIFIER_LLM_API_KEY", "")

		_, err := config.Load(config.ServiceTypeWorker)
		Expect(err).To(MatchError(ContainSubstring("CLASSIFIER_LLM_API_KEY")))
	})

	It("accepts a fully configured worker", func() {
		setEnv("CLASSIFIER_LLM_API_KEY", "sk-test")
		setEnv("EXTRACTOR_LLM_API_KEY", "sk-test")
		setEnv("EXTRACTOR_LLM_PROVIDER", "anthropic")

		cfg, err := config.Load(config.ServiceTypeWorker)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.ExtractorLLM.Enabled()).To(BeTrue())
	})
})
