package videogen

import "github.com/lefilcompany/creator-leap-studio-sub000/internal/domain"

// Human-readable failure messages stored with failed jobs, keyed by
// classification and locale. Callers never see raw provider errors.
var failureMessages = map[domain.ErrorClass]map[string]string{
	domain.ClassRateLimited: {
		"en": "The video service is busy right now. Your credits were returned, please try again in a few minutes.",
		"id": "Layanan video sedang sibuk. Kredit Anda telah dikembalikan, silakan coba lagi dalam beberapa menit.",
	},
	domain.ClassProviderServerError: {
		"en": "The video service had a temporary problem. Your credits were returned, please try again.",
		"id": "Layanan video mengalami gangguan sementara. Kredit Anda telah dikembalikan, silakan coba lagi.",
	},
	domain.ClassProviderRejected: {
		"en": "The request was rejected by the video service. Please adjust the request and try again.",
		"id": "Permintaan ditolak oleh layanan video. Silakan sesuaikan permintaan dan coba lagi.",
	},
	domain.ClassGenerationFailed: {
		"en": "Video generation failed while rendering. The compute was already spent, so no credits were returned.",
		"id": "Pembuatan video gagal saat dirender. Komputasi sudah terpakai, sehingga kredit tidak dikembalikan.",
	},
	domain.ClassPollTimeout: {
		"en": "Video generation took too long and was stopped. The compute was already spent, so no credits were returned.",
		"id": "Pembuatan video memakan waktu terlalu lama dan dihentikan. Komputasi sudah terpakai, sehingga kredit tidak dikembalikan.",
	},
	domain.ClassMaterializeFailure: {
		"en": "The finished video could not be saved. The compute was already spent, so no credits were returned.",
		"id": "Video yang selesai tidak dapat disimpan. Komputasi sudah terpakai, sehingga kredit tidak dikembalikan.",
	},
	domain.ClassUnknownResponseShape: {
		"en": "The video service returned an unexpected result. The compute was already spent, so no credits were returned.",
		"id": "Layanan video mengembalikan hasil yang tidak terduga. Komputasi sudah terpakai, sehingga kredit tidak dikembalikan.",
	},
	domain.ClassCancelled: {
		"en": "Video generation was cancelled before completion.",
		"id": "Pembuatan video dibatalkan sebelum selesai.",
	},
}

func failureMessage(class domain.ErrorClass, locale string) string {
	byLocale, ok := failureMessages[class]
	if !ok {
		byLocale = failureMessages[domain.ClassProviderServerError]
	}
	if msg, ok := byLocale[locale]; ok {
		return msg
	}
	return byLocale["en"]
}
