package service

import (
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"

	"exelix/internal/config"
	"exelix/internal/domain"
	"exelix/internal/pkg/i18n"
	"exelix/internal/repository"
	"exelix/internal/service/admin"
	"exelix/internal/service/admission"
	"exelix/internal/service/auth"
	"exelix/internal/service/captcha"
	"exelix/internal/service/dispatch"
	"exelix/internal/service/guard"
	"exelix/internal/service/owner"
	"exelix/internal/service/photo"
	"exelix/internal/service/push"
	"exelix/internal/service/telegram"
)

type Services struct {
	Auth      auth.Service
	Owner     owner.Service
	Admin     admin.Service
	Admission admission.Service
	Captcha   captcha.Service
	Dispatch  dispatch.Service
	Guard     guard.Service
	Photo     photo.Service
}

func NewServices(repos *repository.Repositories, redis *redis.Client, minioClient *minio.Client, cfg *config.Config) *Services {
	var store photo.ObjectStore
	if minioClient != nil {
		store = minioClient
	}
	photoService := photo.NewService(store, photo.Config{
		Bucket:         cfg.MinIOBucket,
		PublicEndpoint: cfg.MinIOPublicEndpoint,
		PublicUseSSL:   cfg.MinIOPublicUseSSL,
	})

	bot, err := telegram.NewBot(cfg.TelegramBotToken)
	if err != nil {
		log.Printf("[telegram] bot init failed, channel disabled: %v", err)
		bot = nil
	}
	pushSender := push.NewSender(push.Config{
		PublicKey:  cfg.VAPIDPublicKey,
		PrivateKey: cfg.VAPIDPrivateKey,
		Subscriber: cfg.VAPIDSubscriber,
	})
	dispatchService := dispatch.NewService(i18n.Default(), cfg.DispatchTimeout, pushSender, telegram.NewSender(bot))

	guardService := guard.NewService(repos.Event, repos.Throttle, guard.Limits{
		SendDelay:      cfg.SendDelay,
		SenderRegular:  cfg.SenderLimitRegular,
		SenderCritical: cfg.SenderLimitCritical,
		OwnerPerDay:    cfg.OwnerLimitPerDay,
	})
	captchaService := captcha.NewService(captcha.Config{
		Secret:    cfg.HCaptchaSecret,
		SiteKey:   cfg.HCaptchaSiteKey,
		VerifyURL: cfg.HCaptchaVerifyURL,
		Timeout:   cfg.HCaptchaTimeout,
	})

	return &Services{
		Auth:      auth.NewService(repos.Owner, repos.Admin, cfg),
		Owner:     owner.NewService(repos.QRCode, repos.Owner, photoService, domain.Lang(cfg.DefaultLang)),
		Admin:     admin.NewService(repos, redis, cfg.SiteURL),
		Admission: admission.NewService(repos, guardService, captchaService, dispatchService),
		Captcha:   captchaService,
		Dispatch:  dispatchService,
		Guard:     guardService,
		Photo:     photoService,
	}
}
